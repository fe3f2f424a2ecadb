// Copyright 2025 Interlynk.io
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// ------------------

package s3

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/viveksahu26/bomimport/pkg/icontext"
	"github.com/viveksahu26/bomimport/pkg/logger"
)

// S3Config holds the settings for fetching SBOMs from an S3 bucket.
type S3Config struct {
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
	Prefix     string
}

func NewS3Config() *S3Config {
	return &S3Config{}
}

// Validate checks the minimum settings required to reach a bucket.
func (s *S3Config) Validate() error {
	if s.BucketName == "" {
		return fmt.Errorf("bucket name is required")
	}
	if s.Region == "" {
		return fmt.Errorf("region is required")
	}
	return nil
}

// GetAWSClient builds an S3 client from static credentials when provided,
// otherwise from the default credential chain.
func (s *S3Config) GetAWSClient(ctx icontext.ImportMetadata) (*s3.Client, error) {
	logger.LogDebug(ctx.Context, "Initializing AWS S3 client", "region", s.Region, "bucket", s.BucketName, "prefix", s.Prefix)

	var cfg aws.Config
	var err error
	if s.AccessKey != "" && s.SecretKey != "" {
		creds := aws.Credentials{
			AccessKeyID:     s.AccessKey,
			SecretAccessKey: s.SecretKey,
		}
		cfg, err = config.LoadDefaultConfig(ctx.Context,
			config.WithRegion(s.Region),
			config.WithCredentialsProvider(aws.NewCredentialsCache(credentials.StaticCredentialsProvider{Value: creds})),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx.Context, config.WithRegion(s.Region))
	}

	if err != nil {
		logger.LogError(ctx.Context, err, "Failed to load AWS config")
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg), nil
}
