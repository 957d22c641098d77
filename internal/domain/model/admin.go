package model

// Admin is an operator of the provisioning side. PasswordHash is a bcrypt
// hash; admin credentials are verification-only and never revealed.
type Admin struct {
	Username     string
	PasswordHash string
}
