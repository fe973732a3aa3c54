package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/shopspring/decimal"
)

// eventTypeAttribute is the SQS message attribute carrying the outbox event type.
const eventTypeAttribute = "event_type"

// SenderAPI defines the SQS operation used by Publisher.
type SenderAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing messages to AWS SQS.
type Publisher struct {
	client   SenderAPI
	queueURL string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client SenderAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// LifecycleMessage describes one product lifecycle operation.
type LifecycleMessage struct {
	Action     string          `json:"action"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Price      decimal.Decimal `json:"price"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventType is the outbox event type under which the message is stored, e.g. "product.create".
func (m LifecycleMessage) EventType() string {
	return "product." + m.Action
}

// PublishLifecycleMessage publishes a lifecycle message to the SQS queue.
func (p *Publisher) PublishLifecycleMessage(ctx context.Context, msg LifecycleMessage) error {
	messageBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return p.Publish(ctx, msg.EventType(), messageBody)
}

// Publish sends an already encoded message body tagged with its event type.
func (p *Publisher) Publish(ctx context.Context, eventType string, body []byte) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	}
	if eventType != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			eventTypeAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventType),
			},
		}
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
