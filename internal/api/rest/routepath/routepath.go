// Package routepath defines the HTTP routes served by the taskhub API.
package routepath

const (
	// Register accepts new user registrations.
	Register = "/register"
	// Login exchanges credentials for an access token.
	Login = "/login"
	// Tasks lists and creates the caller's tasks.
	Tasks = "/tasks"
	// Task addresses one task by identifier.
	Task = "/tasks/{taskID}"
	// Users lists all registered users.
	Users = "/users"
)
