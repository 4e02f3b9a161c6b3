package service

import (
	"filedock/internal/domain/file"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true, ".ico": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".webm": true, ".flv": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true,
	".aac": true, ".m4a": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true,
	".xlsx": true, ".ppt": true, ".pptx": true, ".txt": true,
	".rtf": true, ".odt": true, ".ods": true, ".odp": true,
	".csv": true, ".md": true,
}

var archiveExtensions = map[string]bool{
	".zip": true, ".rar": true, ".7z": true, ".tar": true,
	".gz": true, ".bz2": true,
}

// DetectFileType categorizes a file from its MIME type and filename
// extension. The category is advisory metadata, not an enforced enum.
func DetectFileType(contentType, filename string) string {
	contentType = strings.ToLower(contentType)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case strings.HasPrefix(contentType, "image/") || imageExtensions[ext]:
		return file.TypeImage
	case strings.HasPrefix(contentType, "video/") || videoExtensions[ext]:
		return file.TypeVideo
	case strings.HasPrefix(contentType, "audio/") || audioExtensions[ext]:
		return file.TypeAudio
	case documentExtensions[ext],
		strings.Contains(contentType, "pdf"),
		strings.Contains(contentType, "document"),
		strings.Contains(contentType, "spreadsheet"),
		strings.Contains(contentType, "presentation"):
		return file.TypeDocument
	case archiveExtensions[ext],
		strings.Contains(contentType, "zip"),
		strings.Contains(contentType, "compressed"),
		strings.Contains(contentType, "archive"):
		return file.TypeArchive
	}

	return file.TypeOther
}
