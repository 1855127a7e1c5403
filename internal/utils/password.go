package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the admin_users seed data was hashed
// with; changing it only affects newly created admins.
const bcryptCost = 12

// HashPassword securely hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain text password with a stored hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
