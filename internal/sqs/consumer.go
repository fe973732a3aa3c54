package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler is called for every decoded lifecycle message. A returned error
// leaves the message on the queue for redelivery.
type Handler func(ctx context.Context, eventType string, msg LifecycleMessage) error

// Consumer handles consuming messages from AWS SQS.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handle   Handler
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
// Messages are logged unless a handler is set with WithHandler.
func NewConsumer(client ConsumerAPI, queueURL string) *Consumer {
	return &Consumer{
		client:   client,
		queueURL: queueURL,
	}
}

// WithHandler replaces the default logging handler.
func (c *Consumer) WithHandler(h Handler) *Consumer {
	c.handle = h
	return c
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       20, // long polling
		MessageAttributeNames: []string{eventTypeAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	var msg LifecycleMessage
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	eventType := msg.EventType()
	if attr, ok := message.MessageAttributes[eventTypeAttribute]; ok && attr.StringValue != nil {
		eventType = *attr.StringValue
	}

	if c.handle != nil {
		return c.handle(ctx, eventType, msg)
	}

	slog.Info("Received product lifecycle notification",
		slog.String("event_type", eventType),
		slog.String("product_id", msg.ProductID),
		slog.String("name", msg.Name),
		slog.String("slug", msg.Slug),
		slog.String("price", msg.Price.StringFixed(2)),
		slog.String("actor", msg.Actor),
		slog.Time("occurred_at", msg.OccurredAt),
	)

	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
