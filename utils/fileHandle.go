package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CourseThumbnailPath generates a unique relative path for a course thumbnail:
// courses/<course_slug>/<uuid>.<ext>
func CourseThumbnailPath(courseSlug, filename string) string {
	ext := filepath.Ext(filename)
	return filepath.Join("courses", courseSlug, uuid.NewString()+ext)
}

// LessonContentPath generates a unique relative path for lesson videos and
// attachments: courses/<course_slug>/<module_slug>/<lesson_slug>/<uuid>.<ext>
func LessonContentPath(courseSlug, moduleSlug, lessonSlug, filename string) string {
	ext := filepath.Ext(filename)
	return filepath.Join("courses", courseSlug, moduleSlug, lessonSlug, uuid.NewString()+ext)
}

// SaveUploadedFile writes an uploaded file under baseDir at relPath.
func SaveUploadedFile(file *multipart.FileHeader, baseDir, relPath string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fullPath := filepath.Join(baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return relPath, nil
}

// GetFileURL maps a stored relative path to its public URL.
func GetFileURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/uploads/" + filepath.ToSlash(relPath)
}
