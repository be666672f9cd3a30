// File: internal/usecase/prompt.go
package usecase

import (
	"fmt"
	"os"
	"strings"

	"writer-ai/internal/domain/ports/adapter"
)

const DefaultSystemPrompt = `あなたは優秀な日本語の編集者兼エッセイストです。
以下のルールに厳密に従って出力してください。

# 出力フォーマット（厳守）
1行目：タイトルのみ（装飾記号や「タイトル：」などの接頭辞は付けない）
2行目：空行
3行目以降：本文

# 注意
- 出力は1パターンのみ
- 入力文の表現をそのまま使わず、必ず言い換える
- 思想エッセイ風で、読者に問いかける構成にする
`

const DefaultInstruction = `以下の文章を、SNS投稿向けの約2000文字の文章に書き換えてください。

条件：
・タイトルを必ず付ける
・内容を分かりやすくする比喩を入れる
・関連する専門用語を自然に使用する
・「なぜそう言えるのか」という根拠を最低2つ以上入れる
・絵文字を適度に入れる（多すぎない）
・思想エッセイ風で、読者に問いかける構成にする
・入力された文章のそのままの表現は使用しない
・本文はできるだけ「約2000文字」に近づける（目安: 1800〜2200文字）

文章：
`

const correctiveHeader = "\n\n追加調整指示：\n"

// PromptBuilder assembles the system and user prompts.
type PromptBuilder struct {
	System      string
	Instruction string
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{System: DefaultSystemPrompt, Instruction: DefaultInstruction}
}

// LoadPromptBuilder uses the file at path as the user instruction when path
// is set; the system prompt stays the default.
func LoadPromptBuilder(path string) (*PromptBuilder, error) {
	pb := NewPromptBuilder()
	if strings.TrimSpace(path) == "" {
		return pb, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	if s := strings.TrimRight(string(b), " \t\r\n"); s != "" {
		pb.Instruction = s + "\n"
	}
	return pb, nil
}

func (p *PromptBuilder) BuildUser(source, corrective string) string {
	user := p.Instruction + strings.TrimSpace(source)
	if c := strings.TrimSpace(corrective); c != "" {
		user += correctiveHeader + c
	}
	return user
}

func (p *PromptBuilder) Messages(source, corrective string) []adapter.Message {
	return []adapter.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.BuildUser(source, corrective)},
	}
}

// ShortInstruction asks for a longer body without padding.
func ShortInstruction(n, low, high int) string {
	return fmt.Sprintf(
		"本文が%d文字で短い。根拠をさらに具体化し、比喩や具体例を増やし、論理のつなぎを補強して、本文を%d〜%d文字に増やして。冗長な繰り返しは避ける。",
		n, low, high,
	)
}

// LongInstruction asks for a shorter body that keeps the argument intact.
func LongInstruction(n, low, high int) string {
	return fmt.Sprintf(
		"本文が%d文字で長い。主張を保ったまま重複や回り道を削り、核心（比喩・専門用語・根拠2つ以上・問いかけ構成）を残して、本文を%d〜%d文字に収めて。",
		n, low, high,
	)
}
