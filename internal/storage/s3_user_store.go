package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"snippet_bot/internal/model"
)

const userKeyDir = "users/"

// S3UserStore implements UserStore using AWS S3: one JSON object per
// record under users/<name>.json.
type S3UserStore struct {
	client     *s3.Client
	bucketName string
}

// NewS3UserStore creates a new S3UserStore instance
func NewS3UserStore(client *s3.Client, bucketName string) *S3UserStore {
	return &S3UserStore{
		client:     client,
		bucketName: bucketName,
	}
}

func (s *S3UserStore) Get(ctx context.Context, name string) (*model.User, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.getKey(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %q from S3: %w", name, err)
	}
	defer result.Body.Close()

	var user model.User
	if err := json.NewDecoder(result.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %q: %w", name, err)
	}
	return &user, nil
}

func (s *S3UserStore) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(userKeyDir),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users in S3: %w", err)
		}
		for _, object := range page.Contents {
			name := s.nameFromKey(aws.ToString(object.Key))
			if name == "" {
				continue
			}
			user, err := s.Get(ctx, name)
			if err != nil {
				return nil, err
			}
			if user != nil {
				users = append(users, user)
			}
		}
	}

	return users, nil
}

func (s *S3UserStore) Save(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user %q: %w", user.Name, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.getKey(user.Name)),
		Body:   strings.NewReader(string(data)),
	})
	if err != nil {
		return fmt.Errorf("failed to store user %q in S3: %w", user.Name, err)
	}
	return nil
}

// getKey generates the S3 key for a user record
func (s *S3UserStore) getKey(name string) string {
	return fmt.Sprintf("%s%s.json", userKeyDir, name)
}

func (s *S3UserStore) nameFromKey(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, ".json")
}
