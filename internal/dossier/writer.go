package dossier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/at-ishikawa/dramatis/internal/assets"
	"github.com/at-ishikawa/dramatis/internal/pdf"
	"github.com/at-ishikawa/dramatis/internal/story"
)

// Writer renders a story dossier to a markdown file and optionally a PDF.
type Writer struct {
	stories      story.StoryRepository
	builder      *Builder
	templatePath string
	progress     io.Writer
}

func NewWriter(stories story.StoryRepository, builder *Builder, templatePath string, progress io.Writer) *Writer {
	return &Writer{
		stories:      stories,
		builder:      builder,
		templatePath: templatePath,
		progress:     progress,
	}
}

// Output writes the dossier for a story into outputDirectory. The file name
// follows the story's folder name. Returns the markdown path.
func (w *Writer) Output(ctx context.Context, storyID int64, outputDirectory string, generatePDF bool) (string, error) {
	s, err := w.stories.FindByID(ctx, storyID)
	if err != nil {
		return "", fmt.Errorf("stories.FindByID(%d) > %w", storyID, err)
	}
	if s == nil {
		return "", fmt.Errorf("story %d does not exist", storyID)
	}

	templateData, err := w.builder.Build(ctx, s)
	if err != nil {
		return "", fmt.Errorf("builder.Build(%s) > %w", s.Title, err)
	}

	if err := os.MkdirAll(outputDirectory, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", outputDirectory, err)
	}

	name := filepath.Base(s.FolderPath)
	if name == "." || name == string(filepath.Separator) {
		name = fmt.Sprintf("story-%d", s.ID)
	}
	outputFilename := filepath.Join(outputDirectory, name+".md")

	output, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", outputFilename, err)
	}
	defer func() {
		_ = output.Close()
	}()

	if err := assets.WriteDossier(output, w.templatePath, templateData); err != nil {
		return "", fmt.Errorf("assets.WriteDossier(%s) > %w", outputFilename, err)
	}

	fmt.Fprintf(w.progress, "Dossier written to: %s\n", outputFilename)

	if generatePDF {
		pdfPath, err := pdf.ConvertMarkdownToPDF(outputFilename)
		if err != nil {
			return "", fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", outputFilename, err)
		}
		fmt.Fprintf(w.progress, "PDF generated at: %s\n", pdfPath)
	}

	return outputFilename, nil
}
