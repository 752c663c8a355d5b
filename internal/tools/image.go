package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/wakeel/internal/network"
)

const (
	DefaultImageURL  = "https://toolkit.rork.com/images/generate/"
	DefaultImageSize = "1024x1024"
)

type Image struct {
	Base64Data string `json:"base64Data"`
	MimeType   string `json:"mimeType"`
}

// DataURI renders the image as a data: URI.
func (i Image) DataURI() string {
	mime := i.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, i.Base64Data)
}

// ImageService calls the image-generation endpoint.
type ImageService struct {
	URL    string
	Size   string
	Client *network.Client
	Policy network.Policy
}

func NewImageService(url, size string, client *network.Client, policy network.Policy) *ImageService {
	if url == "" {
		url = DefaultImageURL
	}
	if size == "" {
		size = DefaultImageSize
	}
	return &ImageService{URL: url, Size: size, Client: client, Policy: policy}
}

func (s *ImageService) Generate(ctx context.Context, prompt string) (Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return Image{}, errors.New("image prompt is empty")
	}
	return network.Retry(ctx, s.Policy, func(ctx context.Context) (Image, error) {
		var resp struct {
			Image Image `json:"image"`
		}
		err := s.Client.CallJSON(ctx, network.Request{
			URL:  s.URL,
			Body: map[string]any{"prompt": prompt, "size": s.Size},
		}, &resp)
		if err != nil {
			return Image{}, err
		}
		if resp.Image.Base64Data == "" {
			return Image{}, errors.New("image service returned no image data")
		}
		return resp.Image, nil
	})
}

type ImageTool struct {
	Service *ImageService
}

func NewImageTool(service *ImageService) *ImageTool {
	return &ImageTool{Service: service}
}

func (t *ImageTool) Name() string {
	return "generate_image"
}

func (t *ImageTool) Description() string {
	return "Generate an image from a text description."
}

func (t *ImageTool) Parameters() map[string]any {
	return stringParam("prompt", "A description of the image to generate")
}

func (t *ImageTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeArgs(input, &args); err != nil {
		return "", err
	}
	img, err := t.Service.Generate(ctx, args.Prompt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("![%s](%s)", args.Prompt, img.DataURI()), nil
}
