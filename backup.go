package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase/core"
)

const backupAppName = "event-registration"

// backupLocation resolves the configured timezone, falling back to UTC.
func backupLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[Backup] Warning: Could not load timezone %q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// nextBackupTime returns the next occurrence of hour:00 in loc strictly after now.
func nextBackupTime(now time.Time, hour int, loc *time.Location) time.Time {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// scheduleBackups runs daily backups at cfg.Hour until ctx is done.
func scheduleBackups(ctx context.Context, app core.App, cfg utils.BackupConfig) {
	if !cfg.Enabled() {
		log.Println("[Backup] S3 credentials not configured, scheduled backups disabled")
		return
	}

	loc := backupLocation(cfg.Timezone)
	for {
		next := nextBackupTime(time.Now(), cfg.Hour, loc)
		duration := time.Until(next)
		log.Printf("[Backup] Next backup scheduled for %s (in %v)", next.Format("2006-01-02 15:04 MST"), duration.Round(time.Minute))

		timer := time.NewTimer(duration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := runBackup(ctx, app, cfg); err != nil {
			log.Printf("[Backup] ERROR: %v", err)
		}
	}
}

// runBackup creates a PocketBase backup, uploads it to S3 and prunes old ones
func runBackup(ctx context.Context, app core.App, cfg utils.BackupConfig) error {
	if !cfg.Enabled() {
		return fmt.Errorf("backup S3 credentials not configured (BACKUP_BUCKET_NAME, BACKUP_ACCESS_KEY_ID, BACKUP_SECRET_ACCESS_KEY)")
	}
	log.Printf("[Backup] Starting backup...")

	backupName := fmt.Sprintf("%s-db-%s.zip", backupAppName, time.Now().UTC().Format("2006-01-02-150405"))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := app.CreateBackup(ctx, backupName); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	backupPath := filepath.Join(app.DataDir(), "backups", backupName)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file not found at %s", backupPath)
	}

	client, err := newBackupClient(ctx, cfg)
	if err != nil {
		return err
	}

	if err := uploadBackupToS3(ctx, client, cfg.BucketName, backupPath, backupName); err != nil {
		return fmt.Errorf("upload to S3: %w", err)
	}

	// Delete local backup to save space
	if err := os.Remove(backupPath); err != nil {
		log.Printf("[Backup] Warning: Failed to delete local backup: %v", err)
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	if err := cleanOldBackups(ctx, client, cfg.BucketName, cutoff); err != nil {
		log.Printf("[Backup] Warning: Failed to clean old backups: %v", err)
	}

	log.Printf("[Backup] Completed successfully: %s", backupName)
	return nil
}

func newBackupClient(ctx context.Context, cfg utils.BackupConfig) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}

func backupPrefix() string {
	return backupAppName + "/database/"
}

func uploadBackupToS3(ctx context.Context, client *s3.Client, bucket, localPath, backupName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer file.Close()

	key := backupPrefix() + backupName
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return err
	}

	log.Printf("[Backup] Uploaded to s3://%s/%s", bucket, key)
	return nil
}

// expiredBackups returns the keys of objects last modified before cutoff.
func expiredBackups(objects []s3types.Object, cutoff time.Time) []string {
	var keys []string
	for _, obj := range objects {
		if obj.Key != nil && obj.LastModified != nil && obj.LastModified.Before(cutoff) {
			keys = append(keys, *obj.Key)
		}
	}
	return keys
}

// cleanOldBackups removes backups older than cutoff from S3
func cleanOldBackups(ctx context.Context, client *s3.Client, bucket string, cutoff time.Time) error {
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(backupPrefix()),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		toDelete = append(toDelete, expiredBackups(page.Contents, cutoff)...)
	}

	for _, key := range toDelete {
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			log.Printf("[Backup] Warning: Failed to delete old backup %s: %v", key, err)
		} else {
			log.Printf("[Backup] Deleted old backup: %s", key)
		}
	}

	if len(toDelete) > 0 {
		log.Printf("[Backup] Cleaned up %d old backup(s)", len(toDelete))
	}
	return nil
}
