package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/sbx/internal/domain"
	"github.com/mmcdole/sbx/internal/slicebox"
	"github.com/spf13/cobra"
)

// entityFlags selects the patients or studies a command works on
type entityFlags struct {
	patients []int64
	studies  []int64
}

func (f *entityFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64SliceVar(&f.patients, "patients", nil, "patient ids")
	cmd.Flags().Int64SliceVar(&f.studies, "studies", nil, "study ids")
	cmd.MarkFlagsMutuallyExclusive("patients", "studies")
	cmd.MarkFlagsOneRequired("patients", "studies")
}

// selection returns the entity prefix and ids chosen on the command line
func (f *entityFlags) selection() (string, []int64) {
	if len(f.patients) > 0 {
		return slicebox.PatientsPrefix, f.patients
	}
	return slicebox.StudiesPrefix, f.studies
}

func newSeriesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Browse series metadata",
	}
	cmd.AddCommand(newSeriesListCmd(e))
	return cmd
}

func newSeriesListCmd(e *env) *cobra.Command {
	var (
		entities    entityFlags
		sources     string
		seriesTypes []int64
		seriesTags  []int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the series of patients or studies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := buildFilter(sources, seriesTypes, seriesTags)
			if err != nil {
				return err
			}
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}

			var series []domain.Series
			if len(entities.patients) > 0 {
				patients := make([]domain.Patient, len(entities.patients))
				for i, id := range entities.patients {
					patients[i] = domain.Patient{ID: id}
				}
				series, err = svc.Metadata.SeriesForPatients(cmd.Context(), patients, f)
			} else {
				studies := make([]domain.Study, len(entities.studies))
				for i, id := range entities.studies {
					studies[i] = domain.Study{ID: id}
				}
				series, err = svc.Metadata.SeriesForStudies(cmd.Context(), studies, f)
			}
			if err != nil {
				return nodeError(err)
			}

			out := cmd.OutOrStdout()
			if len(series) == 0 {
				fmt.Fprintln(out, "No series")
				return nil
			}
			rows := make([][]string, 0, len(series))
			for _, s := range series {
				rows = append(rows, []string{
					formatID(s.ID),
					formatID(s.StudyID),
					s.Modality.Value,
					s.SeriesDescription.Value,
					s.SeriesInstanceUID.Value,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Study", "Modality", "Description", "Series UID"}, rows))
			return nil
		},
	}
	entities.register(cmd)
	cmd.Flags().StringVar(&sources, "sources", "", "source filter, e.g. box:1,user:2")
	cmd.Flags().Int64SliceVar(&seriesTypes, "seriestypes", nil, "series type ids to filter by")
	cmd.Flags().Int64SliceVar(&seriesTags, "seriestags", nil, "series tag ids to filter by")
	return cmd
}

func buildFilter(sources string, seriesTypes, seriesTags []int64) (domain.Filter, error) {
	parsed, err := slicebox.ParseSources(sources)
	if err != nil {
		return domain.Filter{}, err
	}
	f := domain.Filter{Sources: parsed}
	for _, id := range seriesTypes {
		f.SeriesTypes = append(f.SeriesTypes, domain.SeriesType{ID: id})
	}
	for _, id := range seriesTags {
		f.SeriesTags = append(f.SeriesTags, domain.SeriesTag{ID: id})
	}
	return f, nil
}

func newTagCmd(e *env) *cobra.Command {
	var (
		entities entityFlags
		names    []string
	)
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Attach series tags to every series of patients or studies",
		Long: `Attach series tags to every series below the selected patients or studies.
Tags the node does not know yet are created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			prefix, ids := entities.selection()
			d, err := svc.Tagging.Open(cmd.Context(), prefix, ids)
			if err != nil {
				return nodeError(err)
			}
			for _, name := range names {
				if name = strings.TrimSpace(name); name != "" {
					d.Selection.AddName(name)
				}
			}
			if d.Selection.Len() == 0 {
				return errors.New("no tags given")
			}
			if err := svc.Tagging.Submit(cmd.Context(), d); err != nil {
				return reportedError{err}
			}
			return nil
		},
	}
	entities.register(cmd)
	cmd.Flags().StringArrayVarP(&names, "tag", "t", nil, "tag name, repeatable")
	cmd.MarkFlagRequired("tag")
	return cmd
}

func newImagesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage stored images",
	}
	cmd.AddCommand(newImagesDeleteCmd(e))
	return cmd
}

func newImagesDeleteCmd(e *env) *cobra.Command {
	var (
		entities entityFlags
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every image of patients or studies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.services(cmd)
			if err != nil {
				return err
			}
			prefix, ids := entities.selection()
			imageIDs, err := svc.Images.Resolve(cmd.Context(), prefix, ids)
			if err != nil {
				return nodeError(err)
			}
			out := cmd.OutOrStdout()
			if len(imageIDs) == 0 {
				fmt.Fprintln(out, "No images")
				return nil
			}
			opener := prompter{in: e.reader(cmd), out: out, yes: yes}
			return bulkResult(out, svc.Images.DeleteIDs(cmd.Context(), imageIDs, opener, nil))
		},
	}
	entities.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
