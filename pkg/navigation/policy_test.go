package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyCheck(t *testing.T) {
	p := NewPolicy("https://m.naver.com", []string{"naver.com", "nid.naver.com"})

	tests := []struct {
		name   string
		target string
		want   Verdict
	}{
		{"main url", "https://m.naver.com", Verdict{Allowed: true}},
		{"about blank", "about:blank#frame", Verdict{Allowed: true}},
		{"allowed domain", "https://news.naver.com/article/1", Verdict{Allowed: true}},
		{"substring anywhere", "https://evil.example/?r=naver.com", Verdict{Allowed: true}},
		{"external", "https://www.example.co.uk/path", Verdict{PromptLeave: true, Domain: "example.co.uk"}},
		{"ip host", "http://127.0.0.1:8080/", Verdict{PromptLeave: true, Domain: "127.0.0.1"}},
		{"no host", "mailto:someone", Verdict{PromptLeave: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Check(tt.target))
		})
	}
}
