package adapters

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type ffmpegConcatenator struct {
	logger outbound.LoggerPort
}

func NewFFmpegConcatenator(logger outbound.LoggerPort) outbound.VideoConcatenatorPort {
	return &ffmpegConcatenator{
		logger: logger,
	}
}

// Concatenate joins the files in the given order with the concat demuxer and
// stream copy, so segment order is exactly the caller's order. Input files
// are removed on success.
func (f *ffmpegConcatenator) Concatenate(fileNames []string) (string, error) {
	if len(fileNames) == 0 {
		return "", domain.InputError("no files to concatenate")
	}

	fileList, err := os.Create(filepath.Join(os.TempDir(), uuid.NewString()))
	if err != nil {
		f.logger.Error(err, "Failed to create video list file")
		return "", domain.TransientError("create video list file: %v", err)
	}
	defer func(name string) {
		if removeErr := os.Remove(name); removeErr != nil {
			f.logger.Error(removeErr, "Failed to remove video list file")
		}
	}(fileList.Name())

	writer := bufio.NewWriter(fileList)
	for _, name := range fileNames {
		if _, err = writer.WriteString("file '" + name + "'\n"); err != nil {
			_ = fileList.Close()
			f.logger.Error(err, "Failed to write to video list file")
			return "", domain.TransientError("write video list file: %v", err)
		}
	}
	if err = writer.Flush(); err != nil {
		_ = fileList.Close()
		f.logger.Error(err, "Failed to flush video list file")
		return "", domain.TransientError("flush video list file: %v", err)
	}
	if err = fileList.Close(); err != nil {
		f.logger.Error(err, "Failed to close video list file")
		return "", domain.TransientError("close video list file: %v", err)
	}

	finalFileName := filepath.Join(os.TempDir(), uuid.NewString()+".mp4")

	cmd := exec.Command("ffmpeg", "-f", "concat", "-safe", "0", "-i", fileList.Name(), "-c", "copy", finalFileName)
	if output, err := cmd.CombinedOutput(); err != nil {
		f.logger.ErrorWithFields(err, "Failed to concatenate videos", map[string]interface{}{
			"output": string(output),
		})
		return "", domain.TransientError("ffmpeg concat: %v", err)
	}

	for _, name := range fileNames {
		if err = os.Remove(name); err != nil {
			f.logger.Error(err, "Failed to remove segment file")
		}
	}

	return finalFileName, nil
}
