package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3-compatible blob store settings. Overridable through the environment
// so tests and staging do not write into the production bucket.
var (
	accessKey = envOr("S3_ACCESS_KEY", "")
	secretKey = envOr("S3_SECRET_KEY", "")
	bucket    = envOr("S3_BUCKET", "apichat-media")
	region    = envOr("S3_REGION", "us-east-1")
	endpoint  = envOr("S3_ENDPOINT", "https://object.pscloud.io")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getS3Client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(
			accessKey, secretKey, "",
		),
	}))
	return s3.New(sess)
}

// UploadFileToS3 stores the payload under folder/fileName and returns the
// public object URL.
func UploadFileToS3(file []byte, fileName string, folder string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	s3Client := getS3Client()

	_, err := s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String("image/jpeg"),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.object.pscloud.io/%s", bucket, filePath), nil
}

// DeleteFileFromS3 removes an object by the URL UploadFileToS3 returned.
// Used to clean up after a rolled-back message insert.
func DeleteFileFromS3(fileURL string) error {
	prefix := fmt.Sprintf("https://%s.object.pscloud.io/", bucket)
	key := strings.TrimPrefix(fileURL, prefix)
	if key == fileURL {
		return fmt.Errorf("file URL %q does not belong to bucket %s", fileURL, bucket)
	}

	s3Client := getS3Client()
	_, err := s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %v", err)
	}
	return nil
}

// DecodeBase64Image accepts either a bare base64 string or a data URI
// ("data:image/png;base64,...") and returns the raw payload.
func DecodeBase64Image(data string) ([]byte, error) {
	if idx := strings.Index(data, ";base64,"); idx >= 0 {
		data = data[idx+len(";base64,"):]
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image payload: %v", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return payload, nil
}
