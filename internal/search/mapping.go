package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for title documents.
//
// The title is indexed twice: with English stemming for natural queries
// ("pirate" finds "Pirates") and with the simple analyzer so prefix and
// fuzzy queries see the words as typed.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	simpleFieldMapping := bleve.NewTextFieldMapping()
	simpleFieldMapping.Analyzer = simple.Name
	simpleFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("title_simple", simpleFieldMapping)

	movieIDFieldMapping := bleve.NewNumericFieldMapping()
	movieIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("movie_id", movieIDFieldMapping)

	positionFieldMapping := bleve.NewNumericFieldMapping()
	positionFieldMapping.Store = true
	positionFieldMapping.DocValues = true // sortable
	docMapping.AddFieldMappingsAt("position", positionFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}
