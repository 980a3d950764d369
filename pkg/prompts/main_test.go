package prompts

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) (*Registry, *bytes.Buffer) {
	t.Helper()
	logger, buf := newTestLogger()
	r, err := NewDefaultRegistry(logger, opts...)
	require.NoError(t, err)
	buf.Reset()
	return r, buf
}

// fullContext carries every key any built-in template reads.
func fullContext(source string) map[string]interface{} {
	return map[string]interface{}{
		"source_description": source,
		"episode_content":    "ec2 instance i-0a1b2c3d in vpc-12345678",
		"previous_episodes":  []string{"vpc-12345678 created in us-east-1"},
		"entity_types": []EntityType{
			{ID: 0, Name: "Entity", Description: "Default entity classification."},
			{ID: 1, Name: "EC2Instance", Description: "An EC2 compute instance."},
		},
		"custom_prompt":      "",
		"extracted_entities": []string{"i-0a1b2c3d"},
		"node":               NodeSnapshot{Name: "i-0a1b2c3d", Summary: "web server"},
		"nodes":              []EntityRef{{ID: 0, Name: "i-0a1b2c3d"}, {ID: 1, Name: "vpc-12345678"}},
		"edge_types":         []EdgeType{{Name: "RUNS_IN", SourceType: "EC2Instance", TargetType: "VPC"}},
		"extracted_facts":    []string{"i-0a1b2c3d runs in vpc-12345678"},
		"fact":               map[string]interface{}{"relation_type": "RUNS_IN", "source_entity_id": 0, "target_entity_id": 1, "fact": "instance runs in vpc"},
		"reference_time":     "2025-04-30T00:00:00Z",
		"edges":              []string{"i-0a1b2c3d RUNS_IN vpc-12345678"},
	}
}
