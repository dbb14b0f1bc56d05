package users

import "time"

// User is an account record created the first time someone signs in with
// Google. The ID is the provider-prefixed subject ("google:<sub>") and is
// what documents, analyses, resumes and usage rows hang off.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
