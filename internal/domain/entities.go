package domain

import (
	"fmt"
	"strconv"
)

// Box is a paired remote Slicebox node that images are transferred to or from
type Box struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Token      string `json:"token"`
	BaseURL    string `json:"baseUrl"`
	SendMethod string `json:"sendMethod"` // "PUSH" or "POLL"
	Online     bool   `json:"online"`
}

// OutboxEntry is one queued or in-flight image transfer
type OutboxEntry struct {
	ID              int64  `json:"id"`
	RemoteBoxID     int64  `json:"remoteBoxId"`
	RemoteBoxName   string `json:"remoteBoxName"`
	TransactionID   int64  `json:"transactionId"`
	SequenceNumber  int64  `json:"sequenceNumber"`
	TotalImageCount int64  `json:"totalImageCount"`
	ImageID         int64  `json:"imageId"`
	Failed          bool   `json:"failed"`
}

// TransactionGroup aggregates the outbox entries that share a transaction id.
// Groups are derived from a single outbox snapshot and never updated in place.
type TransactionGroup struct {
	TransactionID   int64
	RemoteBoxName   string
	TotalImageCount int64
	Failed          bool
	ImagesLeft      int
	EntryIDs        []int64
}

// DicomValue is a single DICOM attribute as reported by the metadata API
type DicomValue struct {
	Tag   int    `json:"tag"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Patient is the top level of the imaging hierarchy
type Patient struct {
	ID               int64      `json:"id"`
	PatientName      DicomValue `json:"patientName"`
	PatientID        DicomValue `json:"patientID"`
	PatientBirthDate DicomValue `json:"patientBirthDate"`
	PatientSex       DicomValue `json:"patientSex"`
}

// Study belongs to a patient
type Study struct {
	ID               int64      `json:"id"`
	PatientID        int64      `json:"patientId"`
	StudyInstanceUID DicomValue `json:"studyInstanceUID"`
	StudyDescription DicomValue `json:"studyDescription"`
	StudyDate        DicomValue `json:"studyDate"`
	AccessionNumber  DicomValue `json:"accessionNumber"`
}

// Series belongs to a study
type Series struct {
	ID                int64      `json:"id"`
	StudyID           int64      `json:"studyId"`
	SeriesInstanceUID DicomValue `json:"seriesInstanceUID"`
	SeriesDescription DicomValue `json:"seriesDescription"`
	Modality          DicomValue `json:"modality"`
}

// Image is a single DICOM instance
type Image struct {
	ID             int64      `json:"id"`
	SeriesID       int64      `json:"seriesId"`
	SOPInstanceUID DicomValue `json:"sopInstanceUID"`
	InstanceNumber DicomValue `json:"instanceNumber"`
}

// NewTagID marks a series tag that the backend has not assigned an identity to yet
const NewTagID int64 = -1

// SeriesTag is a user-defined label attachable to a series
type SeriesTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IsNew reports whether the tag was created locally and still lacks a backend id
func (t SeriesTag) IsNew() bool {
	return t.ID == NewTagID
}

// Source identifies where images entered the node (box, directory, SCP, ...)
type Source struct {
	SourceType string `json:"sourceType"`
	SourceID   int64  `json:"sourceId"`
	SourceName string `json:"sourceName,omitempty"`
}

// String returns the "type:id" form used in filter query parameters
func (s Source) String() string {
	return s.SourceType + ":" + strconv.FormatInt(s.SourceID, 10)
}

// SeriesType is a named classification of series used for filtering
type SeriesType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is an authenticated account on the node
type User struct {
	ID   int64  `json:"id"`
	User string `json:"user"`
	Role string `json:"role"`
}

// Identified is implemented by every entity addressable by a numeric id
type Identified interface {
	GetID() int64
}

func (b Box) GetID() int64         { return b.ID }
func (e OutboxEntry) GetID() int64 { return e.ID }
func (p Patient) GetID() int64     { return p.ID }
func (s Study) GetID() int64       { return s.ID }
func (s Series) GetID() int64      { return s.ID }
func (i Image) GetID() int64       { return i.ID }
func (t SeriesTag) GetID() int64   { return t.ID }

// IDs extracts the ids of the given entities, preserving order
func IDs[T Identified](items []T) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.GetID()
	}
	return ids
}

// DisplayName returns the patient's name, falling back to its id
func (p Patient) DisplayName() string {
	if p.PatientName.Value != "" {
		return p.PatientName.Value
	}
	return fmt.Sprintf("Patient %d", p.ID)
}

// FormattedSendMethod returns a short human label for the box send method
func (b Box) FormattedSendMethod() string {
	switch b.SendMethod {
	case "PUSH":
		return "push"
	case "POLL":
		return "poll"
	default:
		return "-"
	}
}
