package db

import (
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"

	"github.com/jsphweid/midiops/constants"
	"github.com/jsphweid/midiops/model"
)

const batchSize = 10

// GetPieceMetadatas fetches metadata for the given piece names from the
// configured DynamoDB table, keyed by PK = piece name. Pieces without an
// item are simply absent from the result.
func GetPieceMetadatas(names []string) (map[string]model.PieceMetadata, error) {
	res := make(map[string]model.PieceMetadata)
	if len(names) == 0 {
		return res, nil
	}

	table := constants.GetMetadataTable()
	if table == "" {
		return nil, errors.New("METADATA_TABLE is not set")
	}

	endpoint := constants.GetMetadataEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(constants.GetMetadataRegion()),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating DynamoDB session")
	}
	client := dynamodb.New(sess)

	for start := 0; start < len(names); start += batchSize {
		end := start + batchSize
		if end > len(names) {
			end = len(names)
		}

		var keys []map[string]*dynamodb.AttributeValue
		for _, name := range names[start:end] {
			keys = append(keys, map[string]*dynamodb.AttributeValue{
				"PK": {S: aws.String(name)},
			})
		}

		input := &dynamodb.BatchGetItemInput{
			RequestItems: map[string]*dynamodb.KeysAndAttributes{
				table: {Keys: keys},
			},
		}
		dbres, err := client.BatchGetItem(input)
		if err != nil {
			return nil, errors.Wrap(err, "DynamoDB BatchGetItem")
		}

		for _, v := range dbres.Responses[table] {
			var m model.PieceMetadata
			if attr, ok := v["Year"]; ok && attr.N != nil {
				year, _ := strconv.ParseUint(*attr.N, 10, 32)
				m.Year = uint(year)
			}
			if attr, ok := v["Artist"]; ok && attr.S != nil {
				m.Artist = *attr.S
			}
			if attr, ok := v["Release"]; ok && attr.S != nil {
				m.Release = *attr.S
			}
			if attr, ok := v["Title"]; ok && attr.S != nil {
				m.Title = *attr.S
			}
			if v["PK"] != nil && v["PK"].S != nil {
				res[*v["PK"].S] = m
			}
		}
	}
	return res, nil
}
