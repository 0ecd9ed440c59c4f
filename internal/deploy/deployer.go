package deploy

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/pkg/netlify"
)

const indexPath = "/index.html"

// Deployer publishes a single HTML document as a new Netlify site.
type Deployer struct {
	client netlify.Client
	now    func() time.Time
}

// DeployerOption customizes the deployer.
type DeployerOption func(*Deployer)

// WithClock overrides the uniqueness-suffix clock, for tests.
func WithClock(now func() time.Time) DeployerOption {
	return func(d *Deployer) {
		d.now = now
	}
}

// NewDeployer creates a Deployer.
func NewDeployer(client netlify.Client, opts ...DeployerOption) *Deployer {
	d := &Deployer{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy provisions a uniquely named site, registers a content-digest deploy
// manifest for the single document, uploads the bytes, and returns the
// public HTTPS URL.
func (d *Deployer) Deploy(ctx context.Context, html, displayName string) (string, error) {
	content := []byte(html)
	digest := sha1.Sum(content)
	siteName := fmt.Sprintf("%s-%d", Slugify(displayName), d.now().Unix())

	site, err := d.client.CreateSite(ctx, siteName)
	if err != nil {
		return "", eris.Wrap(err, "deploy: create site")
	}
	zap.L().Info("deploy: site created",
		zap.String("site", siteName),
		zap.String("url", site.PublicURL()),
	)

	dep, err := d.client.CreateDeploy(ctx, site.ID, map[string]string{
		indexPath: hex.EncodeToString(digest[:]),
	})
	if err != nil {
		return "", eris.Wrap(err, "deploy: create deploy")
	}

	if err := d.client.UploadFile(ctx, dep.ID, "index.html", content); err != nil {
		return "", eris.Wrap(err, "deploy: upload document")
	}

	zap.L().Info("deploy: live",
		zap.String("site", siteName),
		zap.String("url", site.PublicURL()),
	)
	return site.PublicURL(), nil
}
