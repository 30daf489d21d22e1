package services

import "apichat/utils"

// S3ImageStore backs ImageStore with the shared S3 helpers.
type S3ImageStore struct{}

func (S3ImageStore) Upload(data []byte, fileName, folder string) (string, error) {
	return utils.UploadFileToS3(data, fileName, folder)
}

func (S3ImageStore) Delete(path string) error {
	return utils.DeleteFileFromS3(path)
}
