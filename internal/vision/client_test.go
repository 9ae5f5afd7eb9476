package vision

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/genproto/googleapis/rpc/status"

	"moodsong/backend/internal/mood"
)

type fakeAnnotator struct {
	resp *visionpb.BatchAnnotateImagesResponse
	err  error
	req  *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.req = req
	return f.resp, f.err
}

func faceResponse(faces ...*visionpb.FaceAnnotation) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{FaceAnnotations: faces}},
	}
}

func TestClient_DetectFaces(t *testing.T) {
	tests := []struct {
		name    string
		fake    fakeAnnotator
		want    []mood.FaceSignals
		wantErr bool
	}{
		{
			name: "single face",
			fake: fakeAnnotator{resp: faceResponse(&visionpb.FaceAnnotation{
				JoyLikelihood:      visionpb.Likelihood_VERY_LIKELY,
				SorrowLikelihood:   visionpb.Likelihood_POSSIBLE,
				AngerLikelihood:    visionpb.Likelihood_UNLIKELY,
				SurpriseLikelihood: visionpb.Likelihood_UNKNOWN,
			})},
			want: []mood.FaceSignals{{Joy: mood.VeryLikely, Sorrow: mood.Possible, Anger: mood.Unlikely, Surprise: mood.Unknown}},
		},
		{
			name: "two faces keep order",
			fake: fakeAnnotator{resp: faceResponse(
				&visionpb.FaceAnnotation{AngerLikelihood: visionpb.Likelihood_LIKELY},
				&visionpb.FaceAnnotation{JoyLikelihood: visionpb.Likelihood_VERY_UNLIKELY},
			)},
			want: []mood.FaceSignals{{Anger: mood.Likely}, {Joy: mood.VeryUnlikely}},
		},
		{
			name: "no faces",
			fake: fakeAnnotator{resp: faceResponse()},
			want: []mood.FaceSignals{},
		},
		{
			name: "empty batch",
			fake: fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{}},
			want: nil,
		},
		{
			name:    "rpc failure",
			fake:    fakeAnnotator{err: errors.New("permission denied")},
			wantErr: true,
		},
		{
			name: "per image error",
			fake: fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{Error: &status.Status{Code: 3, Message: "bad image data"}}},
			}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := tc.fake
			client := newClient(&fake, Config{})
			got, err := client.DetectFaces(context.Background(), []byte{0xff, 0xd8})
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected err=%v got %v", tc.wantErr, err)
			}
			if tc.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
		})
	}
}

func TestClient_DetectFacesRequestShape(t *testing.T) {
	fake := &fakeAnnotator{resp: faceResponse()}
	client := newClient(fake, Config{MaxResults: 3})
	if _, err := client.DetectFaces(context.Background(), []byte("raw")); err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(fake.req.GetRequests()) != 1 {
		t.Fatalf("expected one image request got %d", len(fake.req.GetRequests()))
	}
	req := fake.req.GetRequests()[0]
	if string(req.GetImage().GetContent()) != "raw" {
		t.Fatalf("expected raw bytes in request got %q", req.GetImage().GetContent())
	}
	if len(req.GetFeatures()) != 1 || req.GetFeatures()[0].GetType() != visionpb.Feature_FACE_DETECTION {
		t.Fatalf("expected FACE_DETECTION feature got %+v", req.GetFeatures())
	}
	if req.GetFeatures()[0].GetMaxResults() != 3 {
		t.Fatalf("expected max results 3 got %d", req.GetFeatures()[0].GetMaxResults())
	}
}

func TestClient_DetectFacesEmptyImage(t *testing.T) {
	fake := &fakeAnnotator{}
	client := newClient(fake, Config{})
	if _, err := client.DetectFaces(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage got %v", err)
	}
	if fake.req != nil {
		t.Fatalf("expected no remote call for empty image")
	}
}
