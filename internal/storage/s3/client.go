package s3

import (
	"context"
	"errors"
	"filedock/internal/config"
	apperrors "filedock/pkg/errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const (
	emptySessionToken = ""

	msgObjectNotFound = "stored object not found"
	msgPutObject      = "failed to store object"
	msgGetObject      = "failed to fetch object"
	msgDeleteObject   = "failed to delete object"
	msgPresignObject  = "failed to presign object URL"

	errFailedCreateSessionFmt = "failed to create storage session: %w"
)

// Object is a fetched blob together with the metadata the HTTP layer
// needs to stream it back.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Client wraps an S3-compatible bucket (AWS, Garage, MinIO) behind the
// handful of operations the file services need.
type Client struct {
	svc    *s3.S3
	bucket string
	prefix string
}

func NewClient(cfg config.StorageConfig) (*Client, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			emptySessionToken,
		),
	}

	if cfg.Endpoint != "" {
		// Self-hosted S3 backends need path-style addressing.
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateSessionFmt, err)
	}

	return &Client{
		svc:    s3.New(sess),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// GenerateKey builds the object key for a fresh upload. The UUID prefix
// keeps same-named uploads from colliding while the original name stays
// readable in bucket listings.
func (c *Client) GenerateKey(originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	return fmt.Sprintf("%s/files/%s-%s", c.prefix, uuid.New().String(), name)
}

func (c *Client) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	_, err := c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})

	if err != nil {
		return apperrors.StorageFailure(msgPutObject, err)
	}

	return nil
}

func (c *Client) Get(ctx context.Context, key string) (*Object, error) {
	out, err := c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		if isNoSuchKey(err) {
			return nil, apperrors.NotFound(msgObjectNotFound)
		}
		return nil, apperrors.StorageFailure(msgGetObject, err)
	}

	return &Object{
		Body:        out.Body,
		Size:        aws.Int64Value(out.ContentLength),
		ContentType: aws.StringValue(out.ContentType),
	}, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return apperrors.StorageFailure(msgDeleteObject, err)
	}

	return nil
}

// PresignDownload returns a time-limited GET URL for the object.
func (c *Client) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(expiry)
	if err != nil {
		return "", apperrors.StorageFailure(msgPresignObject, err)
	}

	return url, nil
}

func isNoSuchKey(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	return aerr.Code() == s3.ErrCodeNoSuchKey
}
