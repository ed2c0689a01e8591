package redissink_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/replication"
	"github.com/profaxno/admin-management/internal/replication/redissink"
)

func TestRedisSink(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RedisSink Suite")
}

var _ = Describe("RedisSink", func() {
	var (
		server *miniredis.Miniredis
		sink   *redissink.Sink
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()

		server, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		sink, err = redissink.New(ctx, internal.RedisReplicationConfig{
			Addr:           server.Addr(),
			QueueProducts:  "job-queue-products",
			QueuePurchases: "job-queue-purchases",
			QueueSales:     "job-queue-sales",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(sink.Close()).To(Succeed())
		server.Close()
	})

	It("should fan company messages out to every queue", func() {
		msg := replication.NewMessage("api-admin", replication.ProcessCompanyUpdate, `[{"id":"company-1"}]`)

		_, err := sink.Send(ctx, msg)
		Expect(err).NotTo(HaveOccurred())

		for _, queue := range []string{"job-queue-products", "job-queue-purchases", "job-queue-sales"} {
			jobs, err := server.List(queue)
			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(1))
		}
	})

	It("should fan user messages out to every queue", func() {
		msg := replication.NewMessage("api-admin", replication.ProcessUserUpdate, `[{"id":"user-1"}]`)

		ack, err := sink.Send(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(ContainSubstring("job-queue-products"))
		Expect(ack).To(ContainSubstring("job-queue-purchases"))
		Expect(ack).To(ContainSubstring("job-queue-sales"))

		for _, queue := range []string{"job-queue-products", "job-queue-purchases", "job-queue-sales"} {
			jobs, err := server.List(queue)
			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(1))
		}

		jobs, err := server.List("job-queue-sales")
		Expect(err).NotTo(HaveOccurred())

		var decoded replication.Message
		Expect(json.Unmarshal([]byte(jobs[0]), &decoded)).To(Succeed())
		Expect(decoded.Source).To(Equal("api-admin"))
		Expect(decoded.Process).To(Equal(replication.ProcessUserUpdate))
		Expect(decoded.Payload).To(Equal(`[{"id":"user-1"}]`))
	})

	It("should route product unit messages to the products queue only", func() {
		msg := replication.NewMessage("api-admin", replication.ProcessProductUnitUpdate, `[{"id":"unit-1"}]`)

		ack, err := sink.Send(ctx, msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(ContainSubstring("job-queue-products"))

		jobs, err := server.List("job-queue-products")
		Expect(err).NotTo(HaveOccurred())
		Expect(jobs).To(HaveLen(1))

		Expect(server.Exists("job-queue-purchases")).To(BeFalse())
		Expect(server.Exists("job-queue-sales")).To(BeFalse())
	})

	It("should route document type messages to the purchases and sales queues", func() {
		msg := replication.NewMessage("api-admin", replication.ProcessDocumentTypeDelete, `[{"id":"doctype-1"}]`)

		_, err := sink.Send(ctx, msg)
		Expect(err).NotTo(HaveOccurred())

		Expect(server.Exists("job-queue-products")).To(BeFalse())
		for _, queue := range []string{"job-queue-purchases", "job-queue-sales"} {
			jobs, err := server.List(queue)
			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(1))
		}
	})

	It("should report a send failure when the server is gone", func() {
		server.Close()

		_, err := sink.Send(ctx, replication.NewMessage("api-admin", replication.ProcessUserDelete, `[]`))
		Expect(err).To(HaveOccurred())
	})
})
