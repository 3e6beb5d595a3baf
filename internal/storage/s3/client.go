package s3

import (
	"context"
	"fmt"
	"lincognito/internal/config"
	"lincognito/internal/infra/cache"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const (
	emptyAWSSessionToken = ""
	mediaPrefix          = "media"
	maxFilenameLen       = 100

	// cached download URLs are dropped this long before the signature expires
	urlCacheMargin = time.Minute

	errFailedCreateAWSSessionFmt             = "failed to create AWS session: %w"
	errFailedGeneratePresignedUploadURLFmt   = "failed to generate presigned upload URL: %w"
	errFailedGeneratePresignedDownloadURLFmt = "failed to generate presigned download URL: %w"
	errFailedDeleteObjectFmt                 = "failed to delete object: %w"
)

// MediaStore presigns uploads and downloads of post images in one bucket.
type MediaStore struct {
	svc    *s3.S3
	bucket string
	expiry time.Duration
	urls   *cache.URLCache
}

func NewMediaStore(cfg *config.AWSConfig, urls *cache.URLCache) (*MediaStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return &MediaStore{
		svc:    s3.New(sess),
		bucket: cfg.MediaBucket,
		expiry: cfg.MediaURLExpiry,
		urls:   urls,
	}, nil
}

// PresignedURL is a signed URL and when it stops working.
type PresignedURL struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (m *MediaStore) PresignUpload(ctx context.Context, key, contentType string) (PresignedURL, error) {
	req, _ := m.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	req.SetContext(ctx)

	url, err := req.Presign(m.expiry)
	if err != nil {
		return PresignedURL{}, fmt.Errorf(errFailedGeneratePresignedUploadURLFmt, err)
	}

	return PresignedURL{Key: key, URL: url, ExpiresAt: time.Now().Add(m.expiry)}, nil
}

// PresignDownload serves from the URL cache while the cached signature has time left.
func (m *MediaStore) PresignDownload(ctx context.Context, key string) (PresignedURL, error) {
	if url, ok := m.urls.Get(key); ok {
		return PresignedURL{Key: key, URL: url, ExpiresAt: time.Now().Add(urlCacheMargin)}, nil
	}

	req, _ := m.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(m.expiry)
	if err != nil {
		return PresignedURL{}, fmt.Errorf(errFailedGeneratePresignedDownloadURLFmt, err)
	}

	expiresAt := time.Now().Add(m.expiry)
	if m.expiry > urlCacheMargin {
		m.urls.Set(key, url, expiresAt.Add(-urlCacheMargin))
	}

	return PresignedURL{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func (m *MediaStore) DeleteObject(ctx context.Context, key string) error {
	_, err := m.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, err)
	}
	return nil
}

// MediaKey builds media/<client>/<post>/<uuid>-<name>. The random part keeps two uploads
// of the same filename apart.
func MediaKey(clientID, postID uuid.UUID, filename string) string {
	return path.Join(mediaPrefix, clientID.String(), postID.String(), uuid.NewString()+"-"+SanitizeFilename(filename))
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if out == "" {
		out = "upload"
	}
	if len(out) > maxFilenameLen {
		out = out[len(out)-maxFilenameLen:]
	}
	return out
}

// BelongsTo reports whether key was issued for this post.
func BelongsTo(key string, clientID, postID uuid.UUID) bool {
	return strings.HasPrefix(key, path.Join(mediaPrefix, clientID.String(), postID.String())+"/")
}
