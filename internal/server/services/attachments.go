package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/osmnotes/internal/common"
	"github.com/dmitrijs2005/osmnotes/internal/lifecycle"
	"github.com/dmitrijs2005/osmnotes/internal/logging"
	"github.com/dmitrijs2005/osmnotes/internal/models"
	sc "github.com/dmitrijs2005/osmnotes/internal/server/config"
	"github.com/dmitrijs2005/osmnotes/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PresignExpiry is how long an attachment URL stays valid.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AttachmentService hands out presigned S3 URLs for the original audio and
// image captures behind a note's data fragments. Objects are stored client
// encrypted; the server never sees their bytes.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, log logging.Logger) *AttachmentService {
	return &AttachmentService{
		db:          db,
		repomanager: m,
		config:      cfg,
		log:         log.With("service", "attachments"),
	}
}

func userPrefix(userID models.UserID) string {
	return fmt.Sprintf("users/%s/", userID)
}

// AttachmentKey returns a fresh object key under the note:
// users/<user>/notes/<note>/<uuid>.
func AttachmentKey(userID models.UserID, noteID models.NoteID) string {
	return fmt.Sprintf("%snotes/%s/%s", userPrefix(userID), noteID, uuid.New())
}

func (s *AttachmentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a new object key and a PUT URL for it. The note must
// belong to userID and must not be committed.
func (s *AttachmentService) PresignUpload(ctx context.Context, userID models.UserID, noteID models.NoteID) (string, string, error) {
	note, err := loadNote(ctx, s.repomanager, s.db, userID, noteID)
	if err != nil {
		return "", "", err
	}
	if lifecycle.IsTerminal(note.Status) {
		return "", "", ErrNoteFrozen
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := AttachmentKey(userID, noteID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", err
	}

	s.log.Debug(ctx, "upload url issued", "note_id", noteID, "key", key)
	return key, req.URL, nil
}

// PresignDownload returns a GET URL for key. Keys outside the caller's own
// prefix yield common.ErrorUnauthorized.
func (s *AttachmentService) PresignDownload(ctx context.Context, userID models.UserID, key string) (string, error) {
	if !strings.HasPrefix(key, userPrefix(userID)) || strings.Contains(key, "..") {
		s.log.Warn(ctx, "download outside user prefix", "user_id", userID)
		return "", common.ErrorUnauthorized
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
