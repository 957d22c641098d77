package usecase

// Cipher reverses account credentials stored encrypted at rest. Card-bound
// passwords must stay recoverable because redemption reveals them, so this
// is symmetric encryption, not hashing.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
