// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client used to
// publish rendered sitemap documents for static serving. It wraps the AWS
// SDK v2 and is configured for path-style access (required by CEPH/Hetzner).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"helpnest/internal/sitemap"
)

const xmlContentType = "application/xml; charset=utf-8"

// Client wraps an S3 client for one bucket.
type Client struct {
	s3       *s3.Client
	bucket   string
	prefix   string // key prefix, empty or ending in "/"
	endpoint string
}

// New creates an S3 storage client configured for CEPH/Hetzner with
// path-style addressing. Returns (nil, nil) if endpoint or credentials
// are empty, allowing the app to start without storage.
func New(endpoint, region, accessKey, secretKey, bucket, prefix string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	// Build S3 client with static credentials and path-style access.
	// CEPH rejects the SDK's default trailing checksums, so checksums are
	// only sent where the API requires them.
	s3Client := s3.New(s3.Options{
		Region:                     region,
		BaseEndpoint:               aws.String(endpoint),
		Credentials:                credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle:               true,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	return &Client{
		s3:       s3Client,
		bucket:   bucket,
		prefix:   prefix,
		endpoint: endpoint,
	}, nil
}

// Key returns the object key for a document name.
func (c *Client) Key(name string) string {
	return c.prefix + name
}

// Upload stores an object with public-read ACL so it can be served directly.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// List returns every key under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s/%s: %w", c.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// FileURL returns the path-style public URL of an object.
func (c *Client) FileURL(key string) string {
	return c.endpoint + "/" + c.bucket + "/" + key
}

// PublishSitemap uploads every document of res. Pages go first so the root
// never references a page that is not there yet; pages left over from a
// larger previous generation are deleted last.
func (c *Client) PublishSitemap(ctx context.Context, res *sitemap.Result) error {
	current := make(map[string]bool, len(res.PageDocs)+1)
	docs := append(append([]sitemap.Document{}, res.PageDocs...), res.Root)
	for _, doc := range docs {
		key := c.Key(doc.Name)
		if err := c.Upload(ctx, key, xmlContentType, bytes.NewReader(doc.Body), int64(len(doc.Body))); err != nil {
			return err
		}
		current[key] = true
	}

	existing, err := c.List(ctx, c.Key(sitemap.PageDir))
	if err != nil {
		return err
	}
	stale := 0
	for _, key := range existing {
		if current[key] {
			continue
		}
		if err := c.Delete(ctx, key); err != nil {
			slog.Warn("failed to delete stale sitemap page", "key", key, "error", err)
			continue
		}
		stale++
	}

	slog.Info("sitemap published to object storage",
		"run_id", res.RunID,
		"url", c.FileURL(c.Key(sitemap.RootName)),
		"documents", len(docs),
		"stale_deleted", stale,
	)
	return nil
}
