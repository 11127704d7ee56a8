package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	sj "github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	replySchemaOnce sync.Once
	replySchema     *sj.Schema
	replySchemaErr  error
)

func compiledReplySchema() (*sj.Schema, error) {
	replySchemaOnce.Do(func() {
		raw, err := ReplySchemaJSON()
		if err != nil {
			replySchemaErr = err
			return
		}
		doc, err := sj.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			replySchemaErr = fmt.Errorf("parse reply schema: %w", err)
			return
		}
		compiler := sj.NewCompiler()
		if err := compiler.AddResource("reply.json", doc); err != nil {
			replySchemaErr = fmt.Errorf("add reply schema resource: %w", err)
			return
		}
		replySchema, replySchemaErr = compiler.Compile("reply.json")
	})
	return replySchema, replySchemaErr
}

// ParseReply unmarshals and schema-validates a translator reply body.
// The body must already be the extracted JSON document, not the raw
// model text.
func ParseReply(data []byte) (*Reply, error) {
	schema, err := compiledReplySchema()
	if err != nil {
		return nil, err
	}
	inst, err := sj.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("validate reply: %w", err)
	}
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &reply, nil
}
