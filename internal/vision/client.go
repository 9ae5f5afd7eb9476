package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"moodsong/backend/internal/mood"
)

// Config drives the Cloud Vision client.
type Config struct {
	CredentialsFile string
	Endpoint        string
	Timeout         time.Duration
	MaxResults      int
}

type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// Client detects faces through Google Cloud Vision and exposes their emotion likelihoods.
type Client struct {
	annotator  annotator
	closer     func() error
	timeout    time.Duration
	maxResults int32
}

// ErrEmptyImage is returned when no image bytes are supplied.
var ErrEmptyImage = errors.New("vision: empty image")

// NewClient dials Cloud Vision. Without a credentials file the client falls back to
// application default credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	ic, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision: create client: %w", err)
	}
	client := newClient(ic, cfg)
	client.closer = ic.Close
	return client, nil
}

func newClient(a annotator, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Client{
		annotator:  a,
		timeout:    timeout,
		maxResults: int32(maxResults),
	}
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

// DetectFaces runs FACE_DETECTION on the image and returns one FaceSignals per face,
// in the order reported by the service.
func (c *Client) DetectFaces(ctx context.Context, image []byte) ([]mood.FaceSignals, error) {
	if c == nil || c.annotator == nil {
		return nil, errors.New("vision: client is nil")
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_FACE_DETECTION, MaxResults: c.maxResults},
				},
			},
		},
	}

	resp, err := c.annotator.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision: face detection: %w", err)
	}
	if resp == nil || len(resp.GetResponses()) == 0 {
		return nil, nil
	}

	annotated := resp.GetResponses()[0]
	if status := annotated.GetError(); status != nil && status.GetCode() != 0 {
		return nil, fmt.Errorf("vision: face detection status %d: %s", status.GetCode(), status.GetMessage())
	}

	faces := make([]mood.FaceSignals, 0, len(annotated.GetFaceAnnotations()))
	for _, face := range annotated.GetFaceAnnotations() {
		if face == nil {
			continue
		}
		faces = append(faces, mood.FaceSignals{
			Joy:      toLikelihood(face.GetJoyLikelihood()),
			Sorrow:   toLikelihood(face.GetSorrowLikelihood()),
			Anger:    toLikelihood(face.GetAngerLikelihood()),
			Surprise: toLikelihood(face.GetSurpriseLikelihood()),
		})
	}
	return faces, nil
}

func toLikelihood(l visionpb.Likelihood) mood.Likelihood {
	switch l {
	case visionpb.Likelihood_VERY_UNLIKELY:
		return mood.VeryUnlikely
	case visionpb.Likelihood_UNLIKELY:
		return mood.Unlikely
	case visionpb.Likelihood_POSSIBLE:
		return mood.Possible
	case visionpb.Likelihood_LIKELY:
		return mood.Likely
	case visionpb.Likelihood_VERY_LIKELY:
		return mood.VeryLikely
	default:
		return mood.Unknown
	}
}
