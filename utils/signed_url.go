package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
	"vidgrab/config"
)

// GenerateFileURL creates a signed download URL for a finished job.
func GenerateFileURL(jobID string) string {
	expires := time.Now().Add(config.SignedURLExpiration).Unix()
	token := generateToken(jobID, expires)
	return fmt.Sprintf("/api/file/%s?token=%s&expires=%d", jobID, token, expires)
}

// ValidateFileURL checks if the token is valid and not expired.
func ValidateFileURL(jobID, token string, expires int64) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expectedToken := generateToken(jobID, expires)
	return hmac.Equal([]byte(token), []byte(expectedToken))
}

// generateToken creates HMAC-SHA256 token
func generateToken(jobID string, expires int64) string {
	data := fmt.Sprintf("%s:%d", jobID, expires)
	h := hmac.New(sha256.New, []byte(config.SignedURLSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// ParseExpires converts expires string to int64
func ParseExpires(expiresStr string) (int64, error) {
	return strconv.ParseInt(expiresStr, 10, 64)
}
