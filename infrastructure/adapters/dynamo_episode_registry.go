package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

type dynamoEpisodeItem struct {
	ScriptId    string `dynamodbav:"script_id"`
	Title       string `dynamodbav:"title"`
	EpisodeKey  string `dynamodbav:"episode_key"`
	LineCount   int    `dynamodbav:"line_count"`
	CompletedAt string `dynamodbav:"completed_at"`
}

type dynamoEpisodeRegistry struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

func NewDynamoEpisodeRegistry(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB, dynamoConfig *config.DynamoConfig) outbound.EpisodeRegistryPort {
	return &dynamoEpisodeRegistry{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (r *dynamoEpisodeRegistry) Record(ctx context.Context, rec outbound.EpisodeRecord) error {
	item := dynamoEpisodeItem{
		ScriptId:    rec.ScriptID,
		Title:       rec.Title,
		EpisodeKey:  rec.EpisodeKey,
		LineCount:   rec.LineCount,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to marshal episode item", map[string]interface{}{
			"script_id": rec.ScriptID,
		})
		return domain.InputError("marshal episode item: %v", err)
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(r.dynamoConfig.TableName),
	}

	_, err = r.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to record episode", map[string]interface{}{
			"script_id": rec.ScriptID,
		})
		return domain.TransientError("record episode %s: %v", rec.ScriptID, err)
	}

	return nil
}
