package domain

import "errors"

var (
	ErrEmptyUpload         = errors.New("uploaded file is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidImage        = errors.New("file is not a decodable image")
	ErrUnsupportedModel    = errors.New("unsupported model identifier")
)
