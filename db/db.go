package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// BatchGetItem accepts at most this many keys.
const MaxBatch = 100

type Client struct {
	api   dynamodbiface.DynamoDBAPI
	table string
}

func New(api dynamodbiface.DynamoDBAPI, table string) *Client {
	return &Client{api: api, table: table}
}

// FromConfig connects to the configured table. It returns nil without an
// error when neither an endpoint nor a region is set, meaning metadata is
// not recorded.
func FromConfig() (*Client, error) {
	endpoint := constants.GetDynamoEndpoint()
	region := constants.GetDynamoRegion()
	if endpoint == "" && region == "" {
		return nil, nil
	}
	if region == "" {
		region = "localhost"
	}

	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create a new DynamoDB session: %w", err)
	}
	return New(dynamodb.New(sess), constants.GetDynamoTable()), nil
}

func (c *Client) PutScoreMetadata(ctx context.Context, m model.ScoreMetadata) error {
	item := map[string]*dynamodb.AttributeValue{
		"PK":           {S: aws.String(m.MusicXML)},
		"Midi":         {S: aws.String(m.Midi)},
		"Images":       {N: aws.String(strconv.Itoa(m.Images))},
		"MeasureCount": {N: aws.String(strconv.Itoa(m.MeasureCount))},
		"CreatedAt":    {S: aws.String(m.CreatedAt.UTC().Format(time.RFC3339))},
	}
	if m.Pdf != "" {
		item["Pdf"] = &dynamodb.AttributeValue{S: aws.String(m.Pdf)}
	}
	_, err := c.api.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("error from DynamoDB: %w", err)
	}
	return nil
}

// GetScoreMetadatas looks up several scores at once, keyed by MusicXML
// resource name. Unknown names are absent from the result.
func (c *Client) GetScoreMetadatas(ctx context.Context, names []string) (map[string]model.ScoreMetadata, error) {
	if len(names) > MaxBatch {
		return nil, fmt.Errorf("at most %d names per lookup, got %d", MaxBatch, len(names))
	}

	res := make(map[string]model.ScoreMetadata)
	if len(names) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, name := range names {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(name)},
		})
	}

	out, err := c.api.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			c.table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error from DynamoDB: %w", err)
	}

	for _, v := range out.Responses[c.table] {
		m := parseItem(v)
		res[m.MusicXML] = m
	}
	return res, nil
}

func parseItem(v map[string]*dynamodb.AttributeValue) model.ScoreMetadata {
	str := func(k string) string {
		if a, ok := v[k]; ok && a.S != nil {
			return *a.S
		}
		return ""
	}
	num := func(k string) int {
		if a, ok := v[k]; ok && a.N != nil {
			n, _ := strconv.Atoi(*a.N)
			return n
		}
		return 0
	}

	var s model.ScoreMetadata
	s.MusicXML = str("PK")
	s.Midi = str("Midi")
	s.Pdf = str("Pdf")
	s.Images = num("Images")
	s.MeasureCount = num("MeasureCount")
	s.CreatedAt, _ = time.Parse(time.RFC3339, str("CreatedAt"))
	return s
}
