package slackbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"
)

type fileUploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// Publisher uploads generated report files to one channel.
type Publisher struct {
	api       fileUploader
	channelID string
}

func NewPublisher(token, channelID string, opts ...slack.Option) *Publisher {
	return &Publisher{api: slack.New(token, opts...), channelID: channelID}
}

// Publish uploads each file in order and returns how many succeeded. A
// failed upload is logged and does not stop the remaining ones.
func (p *Publisher) Publish(ctx context.Context, kind string, files []string) int {
	uploaded := 0
	for _, path := range files {
		if err := p.upload(ctx, kind, path); err != nil {
			log.Printf("slack upload failed file=%s err=%v", path, err)
			continue
		}
		log.Printf("slack upload ok file=%s channel=%s", path, p.channelID)
		uploaded++
	}
	return uploaded
}

func (p *Publisher) upload(ctx context.Context, kind, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return fmt.Errorf("report file is empty")
	}
	name := filepath.Base(path)
	_, err = p.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           path,
		FileSize:       int(fi.Size()),
		Filename:       name,
		Channel:        p.channelID,
		Title:          name,
		InitialComment: fmt.Sprintf("Generated %s report %s", kind, name),
	})
	return err
}
