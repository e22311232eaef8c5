package media

import (
	"bytes"
	"context"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Asset is a stored remote image.
type Asset struct {
	URL      string
	PublicID string
}

// Gateway stores and removes binary assets on the remote media service.
type Gateway interface {
	Upload(ctx context.Context, data []byte, folder string) (*Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// uploadAPI is the subset of the Cloudinary upload API the gateway calls.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type cloudinaryGateway struct {
	api uploadAPI
	cb  *gobreaker.CircuitBreaker
	log *logrus.Logger
}

func NewCloudinaryGateway(cloudName, apiKey, apiSecret string, log *logrus.Logger) (Gateway, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, errors.Wrap(err, "init cloudinary")
	}
	return newGateway(&cld.Upload, log), nil
}

func newGateway(api uploadAPI, log *logrus.Logger) *cloudinaryGateway {
	st := gobreaker.Settings{
		Name:        "MediaGateway",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		// a cancelled request is not a gateway failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("CircuitBreaker %s state changed from %s to %s", name, from, to)
		},
	}
	return &cloudinaryGateway{api: api, cb: gobreaker.NewCircuitBreaker(st), log: log}
}

func (g *cloudinaryGateway) Upload(ctx context.Context, data []byte, folder string) (*Asset, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		res, err := g.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{Folder: folder})
		if err != nil {
			return nil, err
		}
		if res.Error.Message != "" {
			return nil, errors.New(res.Error.Message)
		}
		return res, nil
	})
	if err != nil {
		g.log.WithError(err).WithField("folder", folder).Warn("Media upload failed")
		return nil, errors.Wrap(err, "upload asset")
	}

	res := out.(*uploader.UploadResult)
	asset := &Asset{URL: res.SecureURL, PublicID: res.PublicID}
	if asset.URL == "" {
		asset.URL = res.URL
	}
	g.log.WithFields(logrus.Fields{"public_id": asset.PublicID, "bytes": len(data)}).Debug("Media uploaded")
	return asset, nil
}

// Destroy deletes the asset. An asset that is already gone counts as destroyed.
func (g *cloudinaryGateway) Destroy(ctx context.Context, publicID string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		res, err := g.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
		if err != nil {
			return nil, err
		}
		if res.Error.Message != "" {
			return nil, errors.New(res.Error.Message)
		}
		if res.Result != "ok" && res.Result != "not found" {
			return nil, errors.Errorf("unexpected destroy result %q", res.Result)
		}
		return res, nil
	})
	if err != nil {
		return errors.Wrapf(err, "destroy asset %s", publicID)
	}
	return nil
}
