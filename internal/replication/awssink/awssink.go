// Package awssink delivers replication messages over AWS messaging: company
// mutations fan out through an SNS topic, user mutations go straight to the
// sales SQS queue.
package awssink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/replication"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type Sink struct {
	snsClient snsAPI
	sqsClient sqsAPI
	topicARN  string
	salesURL  string
}

// New builds the SNS and SQS clients from one shared AWS config. With
// UseLocalStack set, both clients point at cfg.Endpoint and use the static
// test credentials LocalStack accepts.
func New(ctx context.Context, cfg internal.AWSReplicationConfig) (*Sink, error) {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	snsClient := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.UseLocalStack && cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.UseLocalStack && cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Sink{
		snsClient: snsClient,
		sqsClient: sqsClient,
		topicARN:  cfg.AdminSNSTopic,
		salesURL:  cfg.AdminSalesSQS,
	}, nil
}

func (s *Sink) Send(ctx context.Context, msg replication.Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	switch msg.Process {
	case replication.ProcessCompanyUpdate, replication.ProcessCompanyDelete:
		return s.publish(ctx, string(body))
	case replication.ProcessUserUpdate, replication.ProcessUserDelete:
		return s.enqueue(ctx, string(body))
	default:
		return "", fmt.Errorf("process %s not implemented", msg.Process)
	}
}

func (s *Sink) publish(ctx context.Context, body string) (string, error) {
	out, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return fmt.Sprintf("message published, messageId=%s", aws.ToString(out.MessageId)), nil
}

func (s *Sink) enqueue(ctx context.Context, body string) (string, error) {
	out, err := s.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.salesURL),
		MessageBody:  aws.String(body),
		DelaySeconds: 0,
	})
	if err != nil {
		return "", fmt.Errorf("sqs send: %w", err)
	}
	return fmt.Sprintf("message sent, messageId=%s", aws.ToString(out.MessageId)), nil
}
