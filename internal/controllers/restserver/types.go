package restserver

import (
	"github.com/chrissnell/timbercruise/internal/database"
	"github.com/chrissnell/timbercruise/internal/storage"
	"github.com/chrissnell/timbercruise/pkg/responseformat"
	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/stand"
	"github.com/chrissnell/timbercruise/pkg/stem"
	"github.com/chrissnell/timbercruise/pkg/taper"
)

// PointResponse is one stem height in a profile response
type PointResponse struct {
	Height       int                  `json:"height"`
	DIBInt       int                  `json:"dib_int"`
	DIB          responseformat.Float `json:"dib"`
	DIBConverted responseformat.Float `json:"dib_converted"`
}

// ProfileResponse is returned by the profile endpoints
type ProfileResponse struct {
	RunID        string          `json:"run_id,omitempty"`
	Species      string          `json:"species,omitempty"`
	Model        string          `json:"model"`
	DBH          float64         `json:"dbh"`
	TotalHeight  float64         `json:"total_height"`
	Coefficients []float64       `json:"coefficients"`
	Points       []PointResponse `json:"points"`
}

// ProfileRequest is the body of POST /profile
type ProfileRequest struct {
	Species      string    `json:"species,omitempty"`
	Model        string    `json:"model"`
	DBH          float64   `json:"dbh"`
	TotalHeight  float64   `json:"total_height"`
	Coefficients []float64 `json:"coefficients"`
}

// SpeciesResponse describes one catalog entry
type SpeciesResponse struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	Coefficients []float64 `json:"coefficients"`
}

// StemResponse carries the derived tree metrics, per-acre expansion and the
// logs from an automatic cruise
type StemResponse struct {
	Species         string               `json:"species"`
	DBH             float64              `json:"dbh"`
	TotalHeight     float64              `json:"total_height"`
	MerchDIB        int                  `json:"merch_dib"`
	MerchHeight     int                  `json:"merch_height"`
	HDR             responseformat.Float `json:"hdr"`
	BasalArea       responseformat.Float `json:"basal_area"`
	RelativeDensity responseformat.Float `json:"relative_density"`

	PlotFactor float64              `json:"plot_factor"`
	TPA        responseformat.Float `json:"tpa"`
	BAPerAcre  responseformat.Float `json:"ba_ac"`
	RDPerAcre  responseformat.Float `json:"rd_ac"`

	Cruise *stem.Cruise  `json:"cruise,omitempty"`
	Logs   []LogResponse `json:"logs"`

	GrossBF        int                  `json:"gross_bf"`
	NetBF          int                  `json:"net_bf"`
	GrossCF        responseformat.Float `json:"gross_cf"`
	NetCF          responseformat.Float `json:"net_cf"`
	GrossBFPerAcre responseformat.Float `json:"gross_bf_ac"`
	NetBFPerAcre   responseformat.Float `json:"net_bf_ac"`
	GrossCFPerAcre responseformat.Float `json:"gross_cf_ac"`
	NetCFPerAcre   responseformat.Float `json:"net_cf_ac"`
	VBAR           responseformat.Float `json:"vbar"`
	CBAR           responseformat.Float `json:"cbar"`
}

// LogResponse is one log of a stem response
type LogResponse struct {
	Number       int                  `json:"number"`
	StemHeight   int                  `json:"stem_height"`
	Length       int                  `json:"length"`
	Defect       int                  `json:"defect"`
	TopDIB       int                  `json:"top_dib"`
	Grade        string               `json:"grade"`
	GradeName    string               `json:"grade_name"`
	LengthRange  string               `json:"length_range"`
	Scribner     float64              `json:"scribner"`
	GrossBF      int                  `json:"gross_bf"`
	NetBF        int                  `json:"net_bf"`
	GrossCF      responseformat.Float `json:"gross_cf"`
	NetCF        responseformat.Float `json:"net_cf"`
	LPA          responseformat.Float `json:"lpa"`
	NetBFPerAcre responseformat.Float `json:"net_bf_ac"`
	NetCFPerAcre responseformat.Float `json:"net_cf_ac"`
}

// StandRequest is the body of POST /stand. Trees without logs are cruised
// automatically with Cruise, or the default cruise when it is omitted.
type StandRequest struct {
	Name          string        `json:"name"`
	Acres         float64       `json:"acres"`
	InventoryDate string        `json:"inventory_date,omitempty"`
	Cruise        *stem.Cruise  `json:"cruise,omitempty"`
	Plots         []PlotRequest `json:"plots"`
}

// PlotRequest is one plot of a stand request
type PlotRequest struct {
	PlotFactor float64       `json:"plot_factor"`
	Trees      []TreeRequest `json:"trees"`
}

// TreeRequest is one tree of a plot request
type TreeRequest struct {
	Species     string       `json:"species"`
	DBH         float64      `json:"dbh"`
	TotalHeight float64      `json:"height"`
	Logs        []LogRequest `json:"logs,omitempty"`
}

// LogRequest is a log measured in the field
type LogRequest struct {
	StemHeight int    `json:"stem_height"`
	Length     int    `json:"length"`
	Grade      string `json:"grade,omitempty"`
	Defect     int    `json:"defect"`
}

// MetricsResponse mirrors stand.Metrics with null for non-finite values
type MetricsResponse struct {
	Group          string               `json:"group"`
	Trees          int                  `json:"trees"`
	TPA            responseformat.Float `json:"tpa"`
	BAPerAcre      responseformat.Float `json:"ba_ac"`
	RDPerAcre      responseformat.Float `json:"rd_ac"`
	QMD            responseformat.Float `json:"qmd"`
	TotalHeight    responseformat.Float `json:"total_height"`
	MerchHeight    responseformat.Float `json:"merch_height"`
	HDR            responseformat.Float `json:"hdr"`
	NetBFPerAcre   responseformat.Float `json:"net_bf_ac"`
	NetCFPerAcre   responseformat.Float `json:"net_cf_ac"`
	GrossBFPerAcre responseformat.Float `json:"gross_bf_ac"`
	GrossCFPerAcre responseformat.Float `json:"gross_cf_ac"`
	VBAR           responseformat.Float `json:"vbar"`
	CBAR           responseformat.Float `json:"cbar"`
}

// StatisticsResponse mirrors stand.Statistics
type StatisticsResponse struct {
	Species       string               `json:"species"`
	Metric        string               `json:"metric"`
	Plots         int                  `json:"plots"`
	Sufficient    bool                 `json:"sufficient"`
	Mean          responseformat.Float `json:"mean"`
	Variance      responseformat.Float `json:"variance"`
	StdDev        responseformat.Float `json:"stdev"`
	StdErr        responseformat.Float `json:"stderr"`
	StdErrPercent responseformat.Float `json:"stderr_pct"`
	Low           responseformat.Float `json:"low"`
	High          responseformat.Float `json:"high"`
}

// LogCellResponse mirrors stand.LogCell
type LogCellResponse struct {
	LPA          responseformat.Float `json:"lpa"`
	NetBFPerAcre responseformat.Float `json:"net_bf_ac"`
	NetCFPerAcre responseformat.Float `json:"net_cf_ac"`
}

// LogRowResponse is one species and grade of the log table, with one cell
// per entry of LengthRanges
type LogRowResponse struct {
	Species string            `json:"species"`
	Grade   string            `json:"grade"`
	Lengths []LogCellResponse `json:"lengths"`
	Total   LogCellResponse   `json:"total"`
}

// StandResponse is returned by POST /stand
type StandResponse struct {
	Stand        string               `json:"stand"`
	Acres        float64              `json:"acres"`
	Plots        int                  `json:"plots"`
	Trees        int                  `json:"trees"`
	LengthRanges []string             `json:"length_ranges"`
	Species      []MetricsResponse    `json:"species"`
	DBHClasses   []MetricsResponse    `json:"dbh_classes"`
	Statistics   []StatisticsResponse `json:"statistics"`
	Logs         []LogRowResponse     `json:"logs"`
}

// RunSummary lists a stored run without its points
type RunSummary struct {
	ID          string  `json:"id"`
	Species     string  `json:"species,omitempty"`
	Model       string  `json:"model"`
	DBH         float64 `json:"dbh"`
	TotalHeight float64 `json:"total_height"`
	CreatedAt   string  `json:"created_at"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string                        `json:"status"`
	Backends map[string]storage.HealthData `json:"backends"`
}

func newPointResponses(profile taper.Profile) []PointResponse {
	points := make([]PointResponse, len(profile))
	for i, pt := range profile {
		points[i] = PointResponse{
			Height:       pt.Height,
			DIBInt:       pt.DIBInt,
			DIB:          responseformat.Float(pt.DIB),
			DIBConverted: responseformat.Float(pt.DIBConverted),
		}
	}
	return points
}

func newSpeciesResponse(sp species.Species) SpeciesResponse {
	return SpeciesResponse{
		Code:         sp.Code,
		Name:         sp.Name,
		Model:        sp.Model.String(),
		Coefficients: sp.Coefficients,
	}
}

func newStemResponse(s *stem.Stem) StemResponse {
	resp := StemResponse{
		Species:         s.Species.Code,
		DBH:             s.DBH,
		TotalHeight:     s.TotalHeight,
		MerchDIB:        s.MerchDIB,
		MerchHeight:     s.MerchHeight,
		HDR:             responseformat.Float(s.HDR),
		BasalArea:       responseformat.Float(s.BasalArea),
		RelativeDensity: responseformat.Float(s.RelativeDensity),
		PlotFactor:      s.PlotFactor,
		TPA:             responseformat.Float(s.TPA),
		BAPerAcre:       responseformat.Float(s.BAPerAcre),
		RDPerAcre:       responseformat.Float(s.RDPerAcre),
		Cruise:          s.Cruise,
		Logs:            make([]LogResponse, len(s.Logs)),
		GrossBF:         s.GrossBF,
		NetBF:           s.NetBF,
		GrossCF:         responseformat.Float(s.GrossCF),
		NetCF:           responseformat.Float(s.NetCF),
		GrossBFPerAcre:  responseformat.Float(s.GrossBFPerAcre),
		NetBFPerAcre:    responseformat.Float(s.NetBFPerAcre),
		GrossCFPerAcre:  responseformat.Float(s.GrossCFPerAcre),
		NetCFPerAcre:    responseformat.Float(s.NetCFPerAcre),
		VBAR:            responseformat.Float(s.VBAR),
		CBAR:            responseformat.Float(s.CBAR),
	}
	for i, l := range s.Logs {
		resp.Logs[i] = LogResponse{
			Number:       l.Number,
			StemHeight:   l.StemHeight,
			Length:       l.Length,
			Defect:       l.Defect,
			TopDIB:       l.TopDIB,
			Grade:        l.Grade,
			GradeName:    l.GradeName,
			LengthRange:  l.LengthRange,
			Scribner:     l.Scribner,
			GrossBF:      l.GrossBF,
			NetBF:        l.NetBF,
			GrossCF:      responseformat.Float(l.GrossCF),
			NetCF:        responseformat.Float(l.NetCF),
			LPA:          responseformat.Float(l.LPA),
			NetBFPerAcre: responseformat.Float(l.NetBFPerAcre),
			NetCFPerAcre: responseformat.Float(l.NetCFPerAcre),
		}
	}
	return resp
}

func newMetricsResponses(rows []stand.Summary) []MetricsResponse {
	out := make([]MetricsResponse, len(rows))
	for i, r := range rows {
		out[i] = MetricsResponse{
			Group:          r.Group,
			Trees:          r.Trees,
			TPA:            responseformat.Float(r.TPA),
			BAPerAcre:      responseformat.Float(r.BAPerAcre),
			RDPerAcre:      responseformat.Float(r.RDPerAcre),
			QMD:            responseformat.Float(r.QMD),
			TotalHeight:    responseformat.Float(r.TotalHeight),
			MerchHeight:    responseformat.Float(r.MerchHeight),
			HDR:            responseformat.Float(r.HDR),
			NetBFPerAcre:   responseformat.Float(r.NetBFPerAcre),
			NetCFPerAcre:   responseformat.Float(r.NetCFPerAcre),
			GrossBFPerAcre: responseformat.Float(r.GrossBFPerAcre),
			GrossCFPerAcre: responseformat.Float(r.GrossCFPerAcre),
			VBAR:           responseformat.Float(r.VBAR),
			CBAR:           responseformat.Float(r.CBAR),
		}
	}
	return out
}

func newLogCellResponse(c stand.LogCell) LogCellResponse {
	return LogCellResponse{
		LPA:          responseformat.Float(c.LPA),
		NetBFPerAcre: responseformat.Float(c.NetBFPerAcre),
		NetCFPerAcre: responseformat.Float(c.NetCFPerAcre),
	}
}

func newStandResponse(r stand.Report) StandResponse {
	resp := StandResponse{
		Stand:        r.Stand,
		Acres:        r.Acres,
		Plots:        r.Plots,
		Trees:        r.Trees,
		LengthRanges: make([]string, len(stem.LengthRanges)),
		Species:      newMetricsResponses(r.Species),
		DBHClasses:   newMetricsResponses(r.DBHClasses),
		Statistics:   make([]StatisticsResponse, len(r.Statistics)),
		Logs:         make([]LogRowResponse, len(r.Logs)),
	}
	for i, lr := range stem.LengthRanges {
		resp.LengthRanges[i] = lr.Label
	}
	for i, st := range r.Statistics {
		resp.Statistics[i] = StatisticsResponse{
			Species:       st.Species,
			Metric:        st.Metric,
			Plots:         st.Plots,
			Sufficient:    st.Sufficient,
			Mean:          responseformat.Float(st.Mean),
			Variance:      responseformat.Float(st.Variance),
			StdDev:        responseformat.Float(st.StdDev),
			StdErr:        responseformat.Float(st.StdErr),
			StdErrPercent: responseformat.Float(st.StdErrPercent),
			Low:           responseformat.Float(st.Low),
			High:          responseformat.Float(st.High),
		}
	}
	for i, row := range r.Logs {
		lengths := make([]LogCellResponse, len(row.Lengths))
		for j, c := range row.Lengths {
			lengths[j] = newLogCellResponse(c)
		}
		resp.Logs[i] = LogRowResponse{
			Species: row.Species,
			Grade:   row.Grade,
			Lengths: lengths,
			Total:   newLogCellResponse(row.Total),
		}
	}
	return resp
}

func newRunProfileResponse(run *database.ProfileRun) ProfileResponse {
	return ProfileResponse{
		RunID:        run.ID.String(),
		Species:      run.SpeciesCode,
		Model:        run.Model,
		DBH:          run.DBH,
		TotalHeight:  run.TotalHeight,
		Coefficients: run.CoefficientValues(),
		Points:       newPointResponses(run.Profile()),
	}
}
