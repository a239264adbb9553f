package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3UserKeyScheme(t *testing.T) {
	store := &S3UserStore{bucketName: "snippet-users"}

	assert.Equal(t, "users/U0000000B.json", store.getKey("U0000000B"))
	assert.Equal(t, "users/my-team.json", store.getKey("my-team"))

	assert.Equal(t, "my-team", store.nameFromKey("users/my-team.json"))
	assert.Equal(t, "U0000000B", store.nameFromKey("users/U0000000B.json"))
}
