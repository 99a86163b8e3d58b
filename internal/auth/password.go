package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces the value expected in OPERATOR_PASSWORD_HASH.
func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
