package store

// Session is the persisted "remember me" marker. At most one user is
// remembered at a time and its presence is trusted without a password check.
type Session struct {
	Username string `json:"username"`
}

type Sessions struct {
	path string
}

func NewSessions(path string) *Sessions {
	return &Sessions{path: path}
}

// Load reports the remembered user, if any.
func (s *Sessions) Load() (Session, bool, error) {
	var sess Session
	found, err := readJSON(s.path, &sess)
	if err != nil {
		return Session{}, false, err
	}
	if !found || sess.Username == "" {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *Sessions) Save(username string) error {
	return writeJSON(s.path, Session{Username: username})
}

// Clear forgets the remembered user. Clearing an absent session is a no-op.
func (s *Sessions) Clear() error {
	return removeIfExists(s.path)
}
