package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
)

func TestEdgeCypherCoversEveryTransition(t *testing.T) {
	cases := []struct {
		kind  social.EdgeKind
		state social.EdgeState
		want  string
	}{
		{social.KindLike, social.StatePresent, "MERGE (p)-[r:LIKES]->(c)"},
		{social.KindLike, social.StateAbsent, "DELETE r"},
		{social.KindSubscription, social.StatePresent, "MERGE (p)-[r:SUBSCRIBES]->(ch)"},
		{social.KindSubscription, social.StateAbsent, "[r:SUBSCRIBES]"},
	}
	for _, tc := range cases {
		q, err := edgeCypher(tc.kind, tc.state)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.kind, tc.state, err)
		}
		if !strings.Contains(q, tc.want) {
			t.Fatalf("%s/%s: query missing %q:\n%s", tc.kind, tc.state, tc.want, q)
		}
	}
	if _, err := edgeCypher("follow", social.StatePresent); err == nil {
		t.Fatalf("unknown edge kind should fail")
	}
}

func TestSocialGraphDisabledIsNoop(t *testing.T) {
	g := NewSocialGraph(nil, nil)
	if g.Enabled() {
		t.Fatalf("graph without client should be disabled")
	}
	key := social.LikeKey(uuid.New(), social.Ref(social.TargetVideo, uuid.New()))
	if err := g.ProjectEdge(context.Background(), key, social.StatePresent); err != nil {
		t.Fatalf("ProjectEdge: %v", err)
	}
	if err := g.DropContent(context.Background(), key.Target); err != nil {
		t.Fatalf("DropContent: %v", err)
	}
}
