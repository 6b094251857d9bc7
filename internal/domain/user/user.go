package user

// User is a registered account. PasswordHash holds the bcrypt digest and is
// persisted under the legacy "password" key; the plaintext is never stored.
// Field order matches the on-disk layout of userdata.json.
type User struct {
	Email        string `json:"email"`
	Gender       string `json:"gender,omitempty"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	ID           string `json:"id"`
}
