package slicebox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/sbx/internal/domain"
)

// Entity prefixes for GetImages
const (
	StudiesPrefix  = domain.StudiesPrefix
	PatientsPrefix = domain.PatientsPrefix
)

// GetPatients returns a page of patients
func (c *Client) GetPatients(ctx context.Context, startIndex, count int) ([]domain.Patient, error) {
	var patients []domain.Patient
	path := fmt.Sprintf("/api/metadata/patients?startindex=%d&count=%d", startIndex, count)
	if err := c.getJSON(ctx, path, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// GetImagesForSeries returns all images of a series
func (c *Client) GetImagesForSeries(ctx context.Context, seriesID int64) ([]domain.Image, error) {
	var images []domain.Image
	path := fmt.Sprintf("/api/metadata/images?startindex=0&count=%d&seriesid=%d", allImagesCount, seriesID)
	if err := c.getJSON(ctx, path, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetImagesForStudy returns all images of a study that pass the filter
func (c *Client) GetImagesForStudy(ctx context.Context, studyID int64, f domain.Filter) ([]domain.Image, error) {
	var images []domain.Image
	path := FilteredURL(fmt.Sprintf("%s%d/images", StudiesPrefix, studyID), f)
	if err := c.getJSON(ctx, path, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetImagesForPatient returns all images of a patient that pass the filter
func (c *Client) GetImagesForPatient(ctx context.Context, patientID int64, f domain.Filter) ([]domain.Image, error) {
	var images []domain.Image
	path := FilteredURL(fmt.Sprintf("%s%d/images", PatientsPrefix, patientID), f)
	if err := c.getJSON(ctx, path, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetImages fetches the images endpoint of an arbitrary entity prefix
func (c *Client) GetImages(ctx context.Context, prefix string, id int64) ([]domain.Image, error) {
	var images []domain.Image
	if err := c.getJSON(ctx, fmt.Sprintf("%s%d/images", prefix, id), &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetSeriesForStudy returns the series of a study that pass the filter
func (c *Client) GetSeriesForStudy(ctx context.Context, studyID int64, f domain.Filter) ([]domain.Series, error) {
	var series []domain.Series
	path := FilteredURL(fmt.Sprintf("/api/metadata/series?startindex=0&count=%d&studyid=%d", allSeriesCount, studyID), f)
	if err := c.getJSON(ctx, path, &series); err != nil {
		return nil, err
	}
	return series, nil
}

// GetStudiesForPatient returns the studies of a patient that pass the filter
func (c *Client) GetStudiesForPatient(ctx context.Context, patientID int64, f domain.Filter) ([]domain.Study, error) {
	var studies []domain.Study
	path := FilteredURL(fmt.Sprintf("/api/metadata/studies?startindex=0&count=%d&patientid=%d", allStudiesCount, patientID), f)
	if err := c.getJSON(ctx, path, &studies); err != nil {
		return nil, err
	}
	return studies, nil
}

// DeleteImages removes all given images in a single request
func (c *Client) DeleteImages(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/api/images/delete", ids)
	return err
}

// GetSeriesTags returns every series tag known to the node
func (c *Client) GetSeriesTags(ctx context.Context) ([]domain.SeriesTag, error) {
	var tags []domain.SeriesTag
	if err := c.getJSON(ctx, "/api/metadata/seriestags", &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// AddSeriesTag attaches tag to a series. Tags with id -1 are created by the node.
func (c *Client) AddSeriesTag(ctx context.Context, seriesID int64, tag domain.SeriesTag) error {
	_, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/metadata/series/%d/seriestags", seriesID), tag)
	return err
}
