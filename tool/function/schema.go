//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package function

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/rodrigobaron/mcp-agent/log"
)

// inputSchema reflects the JSON schema of t with every definition inlined.
func inputSchema(t reflect.Type) map[string]any {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := map[string]any{}
	bts, err := json.Marshal(r.ReflectFromType(t))
	if err == nil {
		err = json.Unmarshal(bts, &schema)
	}
	if err != nil {
		log.Warnf("reflect schema of %s: %v", t, err)
		schema = map[string]any{}
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	if _, ok := schema["properties"]; !ok && schema["type"] == "object" {
		schema["properties"] = map[string]any{}
	}
	return schema
}
