package persist

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/kgraph-io/kgraph/pkg/types"
)

// ErrUnsupportedFormat is returned by Export for unknown formats; no
// file is produced in that case.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Export formats.
const (
	FormatJSON    = "json"
	FormatGraphML = "graphml"
	FormatParquet = "parquet"
)

// exportVersion tags consolidated export documents.
const exportVersion = "1.0"

// Exporter writes snapshot documents for external tooling.
type Exporter struct {
	exportDir string
	now       func() time.Time
}

// NewExporter returns an exporter writing into exportDir.
func NewExporter(exportDir string) *Exporter {
	return &Exporter{exportDir: exportDir, now: time.Now}
}

// consolidatedExport is the single-document export: metadata plus the
// three durable collections. Queries are an audit trail, not exported.
type consolidatedExport struct {
	Metadata  exportMetadata    `json:"metadata"`
	Entities  []*types.Entity   `json:"entities"`
	Relations []*types.Relation `json:"relations"`
	Insights  []*types.Insight  `json:"insights"`
}

type exportMetadata struct {
	ExportTime time.Time        `json:"export_time"`
	Version    string           `json:"version"`
	Statistics types.Statistics `json:"statistics"`
}

// GraphML document structure: typed nodes carrying name, type, and
// confidence, and typed directed edges carrying type and confidence.
type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlGraph struct {
	ID          string         `xml:"id,attr"`
	EdgeDefault string         `xml:"edgedefault,attr"`
	Nodes       []graphmlNode  `xml:"node"`
	Edges       []graphmlEdge  `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// parquetEntity is the parquet row schema for entities; properties are
// carried as a JSON string column.
type parquetEntity struct {
	ID         string    `parquet:"id"`
	Name       string    `parquet:"name"`
	Type       string    `parquet:"type"`
	Properties string    `parquet:"properties"`
	Confidence float64   `parquet:"confidence"`
	CreatedAt  time.Time `parquet:"created_at"`
	UpdatedAt  time.Time `parquet:"updated_at"`
	Source     string    `parquet:"source"`
}

// parquetRelation is the parquet row schema for relations.
type parquetRelation struct {
	ID         string    `parquet:"id"`
	SourceID   string    `parquet:"source_id"`
	TargetID   string    `parquet:"target_id"`
	Type       string    `parquet:"type"`
	Properties string    `parquet:"properties"`
	Confidence float64   `parquet:"confidence"`
	CreatedAt  time.Time `parquet:"created_at"`
	UpdatedAt  time.Time `parquet:"updated_at"`
	Source     string    `parquet:"source"`
}

// Export writes the snapshot in the requested format and returns the
// path produced: a single file for "json" and "graphml", a directory
// holding entities.parquet and relations.parquet for "parquet".
// Unknown formats return ErrUnsupportedFormat before anything is
// written.
func (e *Exporter) Export(format string, snapshot types.Snapshot, stats types.Statistics) (string, error) {
	switch format {
	case FormatJSON, FormatGraphML, FormatParquet:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := os.MkdirAll(e.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	stamp := e.now().Format("20060102_150405")

	switch format {
	case FormatJSON:
		doc := consolidatedExport{
			Metadata: exportMetadata{
				ExportTime: e.now(),
				Version:    exportVersion,
				Statistics: stats,
			},
			Entities:  snapshot.Entities,
			Relations: snapshot.Relations,
			Insights:  snapshot.Insights,
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling export: %w", err)
		}
		return e.writeFile(fmt.Sprintf("knowledge_graph_export_%s.json", stamp), data)

	case FormatGraphML:
		doc := graphmlDoc{
			Xmlns: "http://graphml.graphdrawing.org/xmlns",
			Graph: graphmlGraph{ID: "knowledge_graph", EdgeDefault: "directed"},
		}
		for _, entity := range snapshot.Entities {
			doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
				ID: entity.ID,
				Data: []graphmlData{
					{Key: "name", Value: entity.Name},
					{Key: "type", Value: entity.Type},
					{Key: "confidence", Value: fmt.Sprintf("%g", entity.Confidence)},
				},
			})
		}
		for _, relation := range snapshot.Relations {
			doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
				Source: relation.SourceID,
				Target: relation.TargetID,
				Data: []graphmlData{
					{Key: "type", Value: relation.Type},
					{Key: "confidence", Value: fmt.Sprintf("%g", relation.Confidence)},
				},
			})
		}
		data, err := xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling graphml: %w", err)
		}
		data = append([]byte(xml.Header), data...)
		return e.writeFile(fmt.Sprintf("knowledge_graph_export_%s.graphml", stamp), data)

	case FormatParquet:
		dir := filepath.Join(e.exportDir, fmt.Sprintf("knowledge_graph_export_%s", stamp))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating parquet export directory: %w", err)
		}

		entityRows := make([]parquetEntity, 0, len(snapshot.Entities))
		for _, entity := range snapshot.Entities {
			props, err := json.Marshal(entity.Properties)
			if err != nil {
				return "", fmt.Errorf("marshaling entity properties: %w", err)
			}
			entityRows = append(entityRows, parquetEntity{
				ID:         entity.ID,
				Name:       entity.Name,
				Type:       entity.Type,
				Properties: string(props),
				Confidence: entity.Confidence,
				CreatedAt:  entity.CreatedAt,
				UpdatedAt:  entity.UpdatedAt,
				Source:     entity.Source,
			})
		}
		if err := parquet.WriteFile(filepath.Join(dir, "entities.parquet"), entityRows); err != nil {
			return "", fmt.Errorf("writing entities parquet: %w", err)
		}

		relationRows := make([]parquetRelation, 0, len(snapshot.Relations))
		for _, relation := range snapshot.Relations {
			props, err := json.Marshal(relation.Properties)
			if err != nil {
				return "", fmt.Errorf("marshaling relation properties: %w", err)
			}
			relationRows = append(relationRows, parquetRelation{
				ID:         relation.ID,
				SourceID:   relation.SourceID,
				TargetID:   relation.TargetID,
				Type:       relation.Type,
				Properties: string(props),
				Confidence: relation.Confidence,
				CreatedAt:  relation.CreatedAt,
				UpdatedAt:  relation.UpdatedAt,
				Source:     relation.Source,
			})
		}
		if err := parquet.WriteFile(filepath.Join(dir, "relations.parquet"), relationRows); err != nil {
			return "", fmt.Errorf("writing relations parquet: %w", err)
		}
		return dir, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (e *Exporter) writeFile(name string, data []byte) (string, error) {
	path := filepath.Join(e.exportDir, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("replacing export: %w", err)
	}
	return path, nil
}
