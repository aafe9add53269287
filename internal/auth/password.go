package auth

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the work factor for password hashing. Raising it only
// affects new hashes; existing hashes keep the cost they were created with.
const BcryptCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of the plaintext. The salt is
// embedded in the output, so nothing else needs storing.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plaintext matches the stored hash.
// A malformed hash verifies false rather than erroring out.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
