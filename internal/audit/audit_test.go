// Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied. See the License for the
// specific language governing permissions and limitations
// under the License.

package audit

import (
	"context"
	"testing"
)

func TestNewSinkNop(t *testing.T) {
	for _, typ := range []string{"", "none"} {
		sink, err := NewSink(Config{Type: typ})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", typ, err)
		}
		if _, ok := sink.(NopSink); !ok {
			t.Fatalf("%q: expected NopSink, got %T", typ, sink)
		}
		if err := sink.Publish(context.Background(), Event{Kind: KindSessionOpened}); err != nil {
			t.Fatalf("nop publish: %v", err)
		}
	}
}

func TestNewSinkKafka(t *testing.T) {
	sink, err := NewSink(Config{Type: "kafka", Brokers: []string{"localhost:9092"}, Topic: "attendance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(*KafkaSink); !ok {
		t.Fatalf("expected KafkaSink, got %T", sink)
	}
	_ = sink.Close()
}

func TestNewSinkUnknown(t *testing.T) {
	if _, err := NewSink(Config{Type: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
}
