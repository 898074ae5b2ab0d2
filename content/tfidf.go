package content

import (
	"math"
	"strings"
	"unicode"
)

// stopWords 是固定的英文功能词排除表（大小写不敏感）。
// 覆盖常见冠词/代词/介词/助动词，类别标签语料中出现的此类词不参与权重计算。
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "can": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"hers": {}, "him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "just": {}, "me": {}, "more": {},
	"most": {}, "my": {}, "no": {}, "nor": {}, "not": {}, "now": {}, "of": {},
	"off": {}, "on": {}, "once": {}, "only": {}, "or": {}, "other": {}, "our": {},
	"ours": {}, "out": {}, "over": {}, "own": {}, "same": {}, "she": {}, "so": {},
	"some": {}, "such": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"theirs": {}, "them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "to": {}, "too": {}, "under": {},
	"until": {}, "up": {}, "very": {}, "was": {}, "we": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "who": {}, "whom": {},
	"why": {}, "will": {}, "with": {}, "you": {}, "your": {}, "yours": {},
}

// tokenize 把文档切分为小写词元：按非字母数字边界切分，丢弃单字符词元与停用词。
func tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopWords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Vectorizer 是 TF-IDF 向量化器。
//
// 权重方案：
//   - tf: 词元在文档内的原始计数
//   - idf: ln((1+n)/(1+df)) + 1（平滑 IDF，保证永不为零或负）
//   - 行向量做 L2 归一化，归一化后行与行的点积即余弦相似度
//
// 词表按首次出现顺序编号，保证相同语料产出逐位相同的矩阵。
type Vectorizer struct {
	// Vocab 词元 -> 列下标
	Vocab map[string]int

	// IDF 每列的逆文档频率
	IDF []float64
}

// FitTransform 在语料上拟合词表与 IDF，并返回 L2 归一化后的 TF-IDF 矩阵。
// 全空文档对应全零行，不报错，由调用方决定是否作为前置条件拒绝。
func (v *Vectorizer) FitTransform(docs []string) [][]float64 {
	v.Vocab = make(map[string]int)
	tokenized := make([][]string, len(docs))
	df := make([]int, 0)

	for i, doc := range docs {
		tokens := tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			idx, ok := v.Vocab[tok]
			if !ok {
				idx = len(v.Vocab)
				v.Vocab[tok] = idx
				df = append(df, 0)
			}
			df[idx]++
		}
	}

	n := float64(len(docs))
	v.IDF = make([]float64, len(df))
	for i, d := range df {
		v.IDF[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	matrix := make([][]float64, len(docs))
	for i, tokens := range tokenized {
		row := make([]float64, len(v.Vocab))
		for _, tok := range tokens {
			idx := v.Vocab[tok]
			row[idx] += v.IDF[idx]
		}
		normalize(row)
		matrix[i] = row
	}
	return matrix
}

// normalize 对向量做原地 L2 归一化；零向量保持不变。
func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// dot 计算两个等长向量的点积。
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
