// Package cluster implements the article clusterer (SPEC_FULL.md §4.10):
// semantic (embedding cosine-similarity) clustering when embeddings are
// available, falling back to lexical Jaccard similarity over multilingual
// stopword-filtered titles.
package cluster

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
)

// Method reports which clustering strategy produced a result.
type Method string

const (
	MethodSemantic Method = "semantic"
	MethodJaccard  Method = "jaccard"
	MethodNone     Method = "none"
)

// Config tunes the clustering thresholds; zero values take the package
// defaults documented in SPEC_FULL.md §4.10.
type Config struct {
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	MaxRelated          int     `json:"max_related,omitempty"`
	MaxClusters         int     `json:"max_clusters,omitempty"`
}

const (
	defaultLexicalThreshold = 0.35
	semanticThreshold       = 0.75
	defaultMaxRelated       = 4
	defaultMaxClusters      = 10
	maxTitleLength          = 500
	maxWords                = 50
)

// Cluster groups articles, one of which may be the "primary" of a cluster
// with related articles attached.
type Cluster struct {
	ID              string           `json:"id"`
	PrimaryArticle  entity.Article   `json:"primary_article"`
	RelatedArticles []entity.Article `json:"related_articles,omitempty"`
	ArticleCount    int              `json:"article_count"`
}

// Result is the output of a cluster run.
type Result struct {
	Clusters []Cluster
	Method   Method
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = defaultLexicalThreshold
	}
	if c.MaxRelated == 0 {
		c.MaxRelated = defaultMaxRelated
	}
	if c.MaxClusters == 0 {
		c.MaxClusters = defaultMaxClusters
	}
	return c
}

// ClusterArticles clusters articles, trying the semantic path first when an
// LLM gateway (embedding source) is supplied, falling back to lexical
// Jaccard similarity over multilingual stopword-filtered titles.
func ClusterArticles(ctx context.Context, articles []entity.Article, cfg Config, llm port.LlmGateway) Result {
	cfg = cfg.withDefaults()

	if len(articles) == 0 {
		return Result{Clusters: nil, Method: MethodNone}
	}

	if llm != nil && len(articles) >= 2 {
		if clusters, ok := semanticCluster(ctx, articles, cfg, llm); ok {
			return Result{Clusters: clusters, Method: MethodSemantic}
		}
	}

	matrix := jaccardMatrix(articles)
	clusters := buildClusters(articles, matrix, cfg.SimilarityThreshold, cfg.MaxRelated, cfg.MaxClusters)
	return Result{Clusters: clusters, Method: MethodJaccard}
}

// semanticCluster embeds every title and clusters on cosine similarity.
// If any embedding call fails, the caller falls back to the lexical path
// (matching the Python prototype's "can't do semantic clustering without
// all embeddings" behaviour).
func semanticCluster(ctx context.Context, articles []entity.Article, cfg Config, llm port.LlmGateway) ([]Cluster, bool) {
	embeddings := make([][]float32, len(articles))
	for i, a := range articles {
		emb, err := llm.Embed(ctx, a.Title)
		if err != nil || len(emb) == 0 {
			return nil, false
		}
		embeddings[i] = emb
	}

	matrix := cosineMatrix(embeddings)
	clusters := buildClusters(articles, matrix, semanticThreshold, cfg.MaxRelated, cfg.MaxClusters)
	return clusters, true
}

func cosineMatrix(embeddings [][]float32) [][]float64 {
	n := len(embeddings)
	norms := make([]float64, n)
	for i, e := range embeddings {
		var sum float64
		for _, v := range e {
			sum += float64(v) * float64(v)
		}
		if sum == 0 {
			norms[i] = 1
		} else {
			norms[i] = math.Sqrt(sum)
		}
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var dot float64
			for k := 0; k < len(embeddings[i]) && k < len(embeddings[j]); k++ {
				dot += float64(embeddings[i][k]) * float64(embeddings[j][k])
			}
			sim := dot / (norms[i] * norms[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

var stopWords = buildStopWords()

func buildStopWords() map[string]struct{} {
	words := []string{
		// English
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "up", "about", "into", "through", "during",
		"before", "after", "above", "below", "between", "under", "again",
		"further", "then", "once", "here", "there", "when", "where", "why",
		"how", "all", "each", "few", "more", "most", "other", "some", "such",
		"only", "own", "same", "than", "too", "very", "just", "also", "now",
		"says", "said", "will", "would", "could", "should", "have", "has",
		"had", "been", "being", "this", "that", "these", "those", "what",
		"which", "while", "news", "report", "reports", "breaking", "update",
		"latest", "today", "yesterday", "new", "first", "last", "over",
		// Shona
		"ndi", "iri", "ari", "ane", "kuti", "kana", "asi", "zvino", "iyi",
		"uyu", "ichi", "icho", "pano", "apa", "kuno",
		// Swahili
		"na", "ya", "wa", "kwa", "ni", "la", "za", "katika", "kama",
		"hii", "hiyo", "hayo", "sasa", "pia", "lakini",
		// French
		"le", "la", "les", "de", "du", "des", "un", "une", "et", "est",
		"dans", "pour", "que", "qui", "sur", "avec", "plus", "pas",
		// Portuguese
		"um", "uma", "os", "as", "do", "da", "dos", "das", "em", "no",
		"por", "para", "com", "se",
		// Arabic
		"في", "من", "إلى", "على", "عن", "مع", "هذا", "هذه", "التي",
		"الذي", "كان", "قال", "بعد",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func normalizeTitle(title string) []string {
	if title == "" {
		return nil
	}
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	lower := strings.ToLower(title)
	cleaned := nonWord.ReplaceAllString(lower, "")
	fields := strings.Fields(cleaned)

	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
		if len(words) >= maxWords {
			break
		}
	}
	return words
}

func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := toSet(a)
	setB := toSet(b)

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func jaccardMatrix(articles []entity.Article) [][]float64 {
	n := len(articles)
	titleWords := make([][]string, n)
	for i, a := range articles {
		titleWords[i] = normalizeTitle(a.Title)
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := jaccardSimilarity(titleWords[i], titleWords[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}

// buildClusters greedily assigns articles to clusters from a precomputed
// similarity matrix, enforcing the cross-source constraint I-Cluster-CS.
func buildClusters(articles []entity.Article, sim [][]float64, threshold float64, maxRelated, maxClusters int) []Cluster {
	n := len(articles)
	assigned := make([]bool, n)
	var clusters []Cluster

	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}

		cluster := Cluster{
			PrimaryArticle: articles[i],
			ArticleCount:   1,
		}
		assigned[i] = true

		for j := i + 1; j < n; j++ {
			if assigned[j] {
				continue
			}
			if articles[i].Source == articles[j].Source {
				continue
			}
			if sim[i][j] >= threshold {
				cluster.RelatedArticles = append(cluster.RelatedArticles, articles[j])
				cluster.ArticleCount++
				assigned[j] = true
				if len(cluster.RelatedArticles) >= maxRelated {
					break
				}
			}
		}

		cluster.ID = "cluster-" + primaryID(articles[i], i)
		clusters = append(clusters, cluster)
		if len(clusters) >= maxClusters {
			break
		}
	}

	return clusters
}

func primaryID(a entity.Article, fallback int) string {
	if a.ID != "" {
		return a.ID
	}
	return strconv.Itoa(fallback)
}
