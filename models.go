package main

const (
	flashSuccess = "success"
	flashError   = "error"
)

// flash is a one-shot message shown on the next render.
type flash struct {
	Kind    string
	Message string
}

// loginForm is what the login form is redrawn with after a failed attempt.
type loginForm struct {
	Username string
	Error    string
}
