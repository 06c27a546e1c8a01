package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockBackend streams completions from an Anthropic model on AWS Bedrock.
// All traffic stays within AWS - no external API calls.
type BedrockBackend struct {
	client  *bedrockruntime.Client
	modelID string
	region  string
}

// anthropicMessage is a message in the Bedrock Anthropic format.
type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

// anthropicContent is one content block of a message.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// anthropicRequest is the invoke body for Anthropic models on Bedrock.
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
	Temperature      float64            `json:"temperature,omitempty"`
}

// anthropicStreamEvent is one frame of the response stream. Only the delta
// frames carry text; the rest are lifecycle markers.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// NewBedrockBackend creates a Bedrock-powered streaming backend using the
// default AWS credential chain.
func NewBedrockBackend(ctx context.Context, modelID, region string) (*BedrockBackend, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if modelID == "" {
		modelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}

	b := &BedrockBackend{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
		region:  region,
	}

	log.Printf("BedrockBackend: Initialized with model=%s, region=%s", modelID, region)
	return b, nil
}

// Name identifies the backend in logs and fallback events.
func (b *BedrockBackend) Name() string {
	return "bedrock/" + b.modelID
}

// Stream invokes the model with a response stream and forwards each text
// delta to fn in arrival order.
func (b *BedrockBackend) Stream(ctx context.Context, req ChatRequest, fn StreamFunc) error {
	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, anthropicMessage{
			Role:    m.Role,
			Content: []anthropicContent{{Type: "text", Text: m.Content}},
		})
	}

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        req.MaxTokens,
		System:           req.System,
		Messages:         messages,
		Temperature:      req.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := b.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("Bedrock API error: %w", err)
	}

	stream := output.GetStream()
	defer stream.Close()

	for event := range stream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}

		var frame anthropicStreamEvent
		if err := json.Unmarshal(chunk.Value.Bytes, &frame); err != nil {
			return fmt.Errorf("failed to parse stream event: %w", err)
		}
		if frame.Type == "content_block_delta" && frame.Delta.Text != "" {
			if err := fn(frame.Delta.Text); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("Bedrock stream error: %w", err)
	}
	return nil
}
