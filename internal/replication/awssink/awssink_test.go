package awssink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/profaxno/admin-management/internal/replication"
)

func TestAWSSink(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AWSSink Suite")
}

type stubSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (s *stubSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	s.inputs = append(s.inputs, params)
	if s.err != nil {
		return nil, s.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
}

type stubSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (s *stubSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	s.inputs = append(s.inputs, params)
	if s.err != nil {
		return nil, s.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("sqs-msg-1")}, nil
}

var _ = Describe("Sink", func() {
	var (
		snsStub *stubSNS
		sqsStub *stubSQS
		sink    *Sink
		ctx     context.Context
	)

	BeforeEach(func() {
		snsStub = &stubSNS{}
		sqsStub = &stubSQS{}
		sink = &Sink{
			snsClient: snsStub,
			sqsClient: sqsStub,
			topicARN:  "arn:aws:sns:us-east-1:000000000000:admin-topic",
			salesURL:  "https://sqs.us-east-1.amazonaws.com/000000000000/admin-sales",
		}
		ctx = context.Background()
	})

	It("should publish company messages to the SNS topic", func() {
		msg := replication.Message{Source: "api-admin", Process: replication.ProcessCompanyUpdate, Payload: `[{"id":"company-1"}]`}

		ack, err := sink.Send(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal("message published, messageId=sns-msg-1"))

		Expect(snsStub.inputs).To(HaveLen(1))
		Expect(aws.ToString(snsStub.inputs[0].TopicArn)).To(Equal("arn:aws:sns:us-east-1:000000000000:admin-topic"))
		Expect(sqsStub.inputs).To(BeEmpty())

		var decoded replication.Message
		Expect(json.Unmarshal([]byte(aws.ToString(snsStub.inputs[0].Message)), &decoded)).To(Succeed())
		Expect(decoded.Process).To(Equal(replication.ProcessCompanyUpdate))
		Expect(decoded.Payload).To(ContainSubstring("company-1"))
	})

	It("should enqueue user messages on the sales queue", func() {
		msg := replication.Message{Source: "api-admin", Process: replication.ProcessUserDelete, Payload: `[{"id":"user-1"}]`}

		ack, err := sink.Send(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal("message sent, messageId=sqs-msg-1"))

		Expect(sqsStub.inputs).To(HaveLen(1))
		Expect(aws.ToString(sqsStub.inputs[0].QueueUrl)).To(Equal("https://sqs.us-east-1.amazonaws.com/000000000000/admin-sales"))
		Expect(aws.ToString(sqsStub.inputs[0].MessageBody)).To(ContainSubstring("user-1"))
		Expect(snsStub.inputs).To(BeEmpty())
	})

	It("should reject processes this transport does not carry", func() {
		msg := replication.Message{Source: "api-admin", Process: replication.ProcessProductUnitUpdate, Payload: `[]`}

		_, err := sink.Send(ctx, msg)
		Expect(err).To(MatchError("process productUnitUpdate not implemented"))
		Expect(snsStub.inputs).To(BeEmpty())
		Expect(sqsStub.inputs).To(BeEmpty())
	})

	It("should surface publish failures", func() {
		snsStub.err = errors.New("topic gone")

		msg := replication.Message{Source: "api-admin", Process: replication.ProcessCompanyDelete, Payload: `[]`}

		_, err := sink.Send(ctx, msg)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("sns publish"))
	})
})
