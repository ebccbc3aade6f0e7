package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func newTestClient(backend api) *Client {
	raw := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
	})
	return &Client{client: backend, presigner: s3.NewPresignClient(raw), bucket: "archive"}
}

func TestUpload(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(api)

	key, err := c.Upload(context.Background(), "reports/a.pdf", strings.NewReader("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "reports/a.pdf", key)
	assert.Equal(t, "archive", aws.ToString(api.in.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(api.in.ContentType))
	assert.Equal(t, "%PDF-1.3", api.body)
}

func TestUploadError(t *testing.T) {
	c := newTestClient(&fakeAPI{err: errors.New("AccessDenied")})
	_, err := c.Upload(context.Background(), "k", strings.NewReader(""), "application/pdf")
	assert.ErrorContains(t, err, "s3 put object")
}

func TestPresignGet(t *testing.T) {
	c := newTestClient(&fakeAPI{})
	url, err := c.PresignGet(context.Background(), "reports/a.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/archive/reports/a.pdf?"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
