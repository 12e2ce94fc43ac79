/*
Copyright © 2024 the AeroSphere authors.
This file is part of AeroSphere.

AeroSphere is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AeroSphere is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AeroSphere.  If not, see <http://www.gnu.org/licenses/>.*/

package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3GranuleFetcher is the default GranuleFetcher: NASA Earthdata/CMR
// commonly stages satellite granules behind S3-compatible buckets, so
// discovery here is an S3 prefix listing filtered to the fetch window
// rather than a full CMR query -- the CMR query language and
// authentication handshake remain the vendor-specific boundary §1
// excludes. Decoding a downloaded granule into sampled points is
// likewise a boundary concern (NetCDF decoding is explicitly out of
// scope); BytesDecoder supplies it.
type S3GranuleFetcher struct {
	S3            *s3.S3
	Bucket        string
	Prefix        string
	BytesDecoder  func(data []byte, maxPoints int) ([]GranulePoint, error)
	DownloadTimeout time.Duration
}

// NewS3GranuleFetcher builds a fetcher against the default AWS session
// (region/credentials resolved the usual SDK ways: env vars, shared
// config, instance profile).
func NewS3GranuleFetcher(bucket, prefix string, decode func([]byte, int) ([]GranulePoint, error)) (*S3GranuleFetcher, error) {
	sess, err := session.NewSessionWithOptions(session.Options{SharedConfigState: session.SharedConfigEnable})
	if err != nil {
		return nil, fmt.Errorf("aerosphere: could not create aws session: %w", err)
	}
	return &S3GranuleFetcher{
		S3: s3.New(sess), Bucket: bucket, Prefix: prefix,
		BytesDecoder: decode, DownloadTimeout: DownloadTimeout,
	}, nil
}

// FindGranules lists objects under Prefix whose key embeds a timestamp
// falling within window, using the "YYYYMMDDTHHMMSS" granule-name
// convention common to Earthdata products. Keys that don't parse as a
// timestamp are skipped rather than failing the whole listing.
func (f *S3GranuleFetcher) FindGranules(ctx context.Context, window Window) ([]Granule, error) {
	var granules []Granule
	err := f.S3.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(f.Bucket),
		Prefix: aws.String(f.Prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			t, ok := granuleTimeFromKey(key)
			if !ok {
				continue
			}
			if t.Before(window.Start) || !t.Before(window.End) {
				continue
			}
			granules = append(granules, Granule{SourceFile: key, MidpointUTC: t.Unix()})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("aerosphere: s3 listing of s3://%s/%s failed: %w", f.Bucket, f.Prefix, err)
	}
	return granules, nil
}

// Decode downloads g.SourceFile and hands its bytes to BytesDecoder.
func (f *S3GranuleFetcher) Decode(ctx context.Context, g Granule, maxPoints int) ([]GranulePoint, error) {
	if f.BytesDecoder == nil {
		return nil, fmt.Errorf("aerosphere: no granule byte decoder configured for s3://%s/%s", f.Bucket, g.SourceFile)
	}
	timeout := f.DownloadTimeout
	if timeout <= 0 {
		timeout = DownloadTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := f.S3.GetObjectWithContext(dctx, &s3.GetObjectInput{
		Bucket: aws.String(f.Bucket),
		Key:    aws.String(g.SourceFile),
	})
	if err != nil {
		return nil, fmt.Errorf("aerosphere: s3 download of s3://%s/%s failed: %w", f.Bucket, g.SourceFile, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, fmt.Errorf("aerosphere: reading s3://%s/%s failed: %w", f.Bucket, g.SourceFile, err)
	}
	return f.BytesDecoder(buf.Bytes(), maxPoints)
}

// granuleTimeFromKey extracts a "YYYYMMDDTHHMMSS" timestamp segment
// from a granule object key.
func granuleTimeFromKey(key string) (time.Time, bool) {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '/' || r == '_' || r == '.'
	})
	for _, p := range parts {
		if t, err := time.Parse("20060102T150405", p); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
