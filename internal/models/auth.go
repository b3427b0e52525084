package models

import (
	"encoding/json"
	"errors"
)

// AccessMethodUser is the only access method accepted on signup and signin.
const AccessMethodUser = "user"

// AuthToken is a signed session token handed out on signin.
type AuthToken string

// ByteArray is a byte slice that travels through JSON as an array of
// numbers ([1,2,3]) rather than base64.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	nums := make([]int, len(b))
	for i, v := range b {
		nums[i] = int(v)
	}
	return json.Marshal(nums)
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	if nums == nil {
		*b = nil
		return nil
	}
	out := make(ByteArray, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return errors.New("byte value out of range")
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// SignupParams creates a user. Password holds the output of the client-side
// key derivation, not the user's secret.
type SignupParams struct {
	Namespace          string    `json:"NS"`
	Database           string    `json:"DB"`
	AccessMethod       string    `json:"AC"`
	OsmID              string    `json:"osm_id"`
	Password           ByteArray `json:"password"`
	EncryptedOpenAIKey ByteArray `json:"encrypted_openai_key"`
}

// SigninParams authenticates an existing user.
type SigninParams struct {
	Namespace    string    `json:"NS"`
	Database     string    `json:"DB"`
	AccessMethod string    `json:"AC"`
	OsmID        string    `json:"osm_id"`
	Password     ByteArray `json:"password"`
}
