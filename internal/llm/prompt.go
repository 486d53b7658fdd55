package llm

import (
	"fmt"
	"strings"

	"github.com/yubota24504/FileVizDedup/internal/domain"
)

const (
	LangJapanese = "ja"
	LangEnglish  = "en"
)

const japaneseTemplate = `あなたは日本語のみで回答するアシスタントです。
英語での回答は禁止です。
出力は必ず日本語で行ってください。

あなたはファイルの中身（音声・画像・動画・タグ・メタデータ）を確認できません。
入力として与えられた hash / size / path のみを根拠に説明してください。

根拠のない推測は禁止です。
「同じ曲」「同じ内容」「音楽ファイル」「メタデータが同じ」など、
入力情報から判断できない内容には言及しないでください。

hash が完全に一致している場合のみ「完全に同一のファイル」と断定してよい
hash が異なる場合は断定せず、「可能性がある」表現に留める
説明は簡潔に、箇条書きで 4〜6 行程度にまとめる

---

以下の重複ファイルグループについて、上記の指示に厳密に従って、技術的根拠に基づく簡潔な説明を生成してください。

# 技術的根拠
- Hash: %s
- Size: %d bytes

# ファイルリスト
%s

# 説明 (日本語、箇条書き4〜6行):
`

const englishTemplate = `Please generate an explanation for the following group of duplicate files.

# Instructions:
- Explain the basis for identifying these as duplicate files. Base your explanation on the provided hash and size.
- Propose general criteria for deciding which file to keep and which to delete.
- Briefly state the precautions to take when deleting the files.
- Use a bulleted list format (-, *, etc.) for the output and keep it within 5 lines total.

# Technical Evidence
- Hash: %s
- Size: %d bytes

# File List
%s

# Explanation
`

// BuildExplainPrompt renders the prompt for group. Any language other than
// Japanese gets the English prompt.
func BuildExplainPrompt(group domain.DuplicateGroup, lang string) string {
	lines := make([]string, 0, len(group.Paths))
	for _, path := range group.Paths {
		lines = append(lines, "- "+path)
	}
	paths := strings.Join(lines, "\n")
	hash := group.Hash
	if hash == "" {
		hash = "N/A"
	}

	template := englishTemplate
	if lang == LangJapanese {
		template = japaneseTemplate
	}
	return fmt.Sprintf(template, hash, group.Size, paths)
}
