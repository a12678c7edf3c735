package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aicaddy/caddy-api/internal/models"
)

// Shape inference thresholds, in degrees of launch direction offline and
// percent carry lost versus ball speed expectation. Mild curvature reads as
// a Fade/Draw, severe curvature as a Slice/Hook.
const (
	straightDirectionDeg = 5.0
	severeDirectionDeg   = 15.0
	mildDirectionDeg     = 10.0
	severeLossPercent    = 5.0
	mildLossPercent      = 2.0
)

// ParsedShot is one shot extracted from a launch monitor export, prior to
// persistence.
type ParsedShot struct {
	ClubName string           `json:"club_name"`
	Distance int              `json:"distance"`
	Shape    models.ShotShape `json:"shot_shape"`
	Lie      models.Lie       `json:"lie"`
}

// ParsedRound groups parsed shots by session date.
type ParsedRound struct {
	Date       time.Time    `json:"date"`
	CourseName string       `json:"course_name"`
	Shots      []ParsedShot `json:"shots"`
}

// ParseResult is the outcome of parsing a launch monitor file.
type ParseResult struct {
	Rounds       []ParsedRound     `json:"rounds"`
	SourceDevice models.DeviceType `json:"source_device"`
	Errors       []string          `json:"errors"`
	Warnings     []string          `json:"warnings"`
}

// TotalShots counts shots across all parsed rounds.
func (r ParseResult) TotalShots() int {
	n := 0
	for _, round := range r.Rounds {
		n += len(round.Shots)
	}
	return n
}

// LaunchMonitorParser turns raw launch monitor exports into rounds of shots.
// It sniffs the device format from the file content and tolerates malformed
// rows, collecting them as warnings instead of failing the whole file.
type LaunchMonitorParser struct {
	logger *logrus.Logger
}

func NewLaunchMonitorParser(logger *logrus.Logger) *LaunchMonitorParser {
	return &LaunchMonitorParser{logger: logger}
}

// Parse detects the export format and extracts shots.
func (p *LaunchMonitorParser) Parse(fileName string, data []byte) ParseResult {
	device := detectDevice(fileName, data)

	var result ParseResult
	switch device {
	case models.DeviceGarminR10:
		if strings.HasSuffix(strings.ToLower(fileName), ".json") {
			result = p.parseGarminJSON(data)
		} else {
			result = p.parseGarminR10CSV(data)
		}
	case models.DeviceSkyTrak:
		result = p.parseSkyTrakCSV(data)
	case models.DeviceMevo:
		result = p.parseMevoCSV(data)
	default:
		result = p.parseGenericCSV(data)
	}

	result.SourceDevice = device
	if result.TotalShots() == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "no shots found in file")
	}
	return result
}

// detectDevice sniffs the export format from the filename and header row.
func detectDevice(fileName string, data []byte) models.DeviceType {
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	name := strings.ToLower(fileName)

	switch {
	case strings.Contains(name, "r10") || strings.Contains(head, "garmin"):
		return models.DeviceGarminR10
	case strings.Contains(name, "skytrak") || strings.Contains(head, "skytrak"):
		return models.DeviceSkyTrak
	case strings.Contains(name, "mevo") || strings.Contains(head, "flightscope"):
		return models.DeviceMevo
	case strings.Contains(head, "club type") && strings.Contains(head, "carry distance"):
		return models.DeviceGarminR10
	case strings.Contains(head, "club speed") && strings.Contains(head, "side angle"):
		return models.DeviceSkyTrak
	default:
		return models.DeviceGeneric
	}
}

// csvTable reads a CSV payload into a header-indexed table.
func csvTable(data []byte) (map[string]int, [][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("file has no data rows")
	}

	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return header, records[1:], nil
}

func cell(header map[string]int, row []string, names ...string) (string, bool) {
	for _, name := range names {
		if i, ok := header[name]; ok && i < len(row) {
			v := strings.TrimSpace(row[i])
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (p *LaunchMonitorParser) parseGarminR10CSV(data []byte) ParseResult {
	var result ParseResult
	header, rows, err := csvTable(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	var shots []ParsedShot
	for i, row := range rows {
		club, ok := cell(header, row, "club type", "club")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing club", i+2))
			continue
		}
		carryStr, ok := cell(header, row, "carry distance", "carry")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing carry distance", i+2))
			continue
		}
		carry, err := strconv.ParseFloat(carryStr, 64)
		if err != nil || carry <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: invalid carry distance %q", i+2, carryStr))
			continue
		}

		direction := parseFloatCell(header, row, "launch direction", "direction")
		total := parseFloatCell(header, row, "total distance", "total")
		if total == 0 {
			total = carry
		}

		shots = append(shots, ParsedShot{
			ClubName: normalizeClubName(club),
			Distance: int(math.Round(total)),
			Shape:    InferShotShape(direction, carry, total),
			Lie:      defaultLieForClub(club),
		})
	}

	result.Rounds = groupIntoRound(shots, "Garmin R10 Session")
	return result
}

func (p *LaunchMonitorParser) parseSkyTrakCSV(data []byte) ParseResult {
	var result ParseResult
	header, rows, err := csvTable(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	var shots []ParsedShot
	for i, row := range rows {
		club, ok := cell(header, row, "club", "club name")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing club", i+2))
			continue
		}
		carryStr, ok := cell(header, row, "carry", "carry (yds)")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing carry", i+2))
			continue
		}
		carry, err := strconv.ParseFloat(carryStr, 64)
		if err != nil || carry <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: invalid carry %q", i+2, carryStr))
			continue
		}

		direction := parseFloatCell(header, row, "side angle", "offline")
		total := parseFloatCell(header, row, "total", "total (yds)")
		if total == 0 {
			total = carry
		}

		shots = append(shots, ParsedShot{
			ClubName: normalizeClubName(club),
			Distance: int(math.Round(total)),
			Shape:    InferShotShape(direction, carry, total),
			Lie:      defaultLieForClub(club),
		})
	}

	result.Rounds = groupIntoRound(shots, "SkyTrak Session")
	return result
}

func (p *LaunchMonitorParser) parseMevoCSV(data []byte) ParseResult {
	var result ParseResult
	header, rows, err := csvTable(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	var shots []ParsedShot
	for i, row := range rows {
		club, ok := cell(header, row, "club", "golf club")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing club", i+2))
			continue
		}
		carryStr, ok := cell(header, row, "carry (yds)", "carry")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing carry", i+2))
			continue
		}
		carry, err := strconv.ParseFloat(carryStr, 64)
		if err != nil || carry <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: invalid carry %q", i+2, carryStr))
			continue
		}

		direction := parseFloatCell(header, row, "lateral (yds)", "horizontal launch")
		total := parseFloatCell(header, row, "total (yds)", "total")
		if total == 0 {
			total = carry
		}

		shots = append(shots, ParsedShot{
			ClubName: normalizeClubName(club),
			Distance: int(math.Round(total)),
			Shape:    InferShotShape(direction, carry, total),
			Lie:      defaultLieForClub(club),
		})
	}

	result.Rounds = groupIntoRound(shots, "Mevo+ Session")
	return result
}

// parseGenericCSV handles unbranded exports with club/distance columns, and
// optionally explicit shape and lie columns.
func (p *LaunchMonitorParser) parseGenericCSV(data []byte) ParseResult {
	var result ParseResult
	header, rows, err := csvTable(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	var shots []ParsedShot
	for i, row := range rows {
		club, ok := cell(header, row, "club", "club name", "club type")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing club", i+2))
			continue
		}
		distStr, ok := cell(header, row, "distance", "total distance", "carry", "yards")
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing distance", i+2))
			continue
		}
		dist, err := strconv.ParseFloat(distStr, 64)
		if err != nil || dist <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: invalid distance %q", i+2, distStr))
			continue
		}

		shot := ParsedShot{
			ClubName: normalizeClubName(club),
			Distance: int(math.Round(dist)),
			Shape:    models.ShapeStraight,
			Lie:      defaultLieForClub(club),
		}
		if shape, ok := cell(header, row, "shot shape", "shape"); ok {
			if models.ValidShotShape(shape) {
				shot.Shape = models.ShotShape(shape)
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: unknown shot shape %q", i+2, shape))
			}
		}
		if lie, ok := cell(header, row, "lie"); ok {
			if models.ValidLie(lie) {
				shot.Lie = models.Lie(lie)
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: unknown lie %q", i+2, lie))
			}
		}
		shots = append(shots, shot)
	}

	result.Rounds = groupIntoRound(shots, "Practice Session")
	return result
}

// garminJSONExport is the subset of the R10 app's JSON export we read.
type garminJSONExport struct {
	Shots []struct {
		ClubType        string  `json:"clubType"`
		CarryDistance   float64 `json:"carryDistance"`
		TotalDistance   float64 `json:"totalDistance"`
		LaunchDirection float64 `json:"launchDirection"`
	} `json:"shots"`
}

func (p *LaunchMonitorParser) parseGarminJSON(data []byte) ParseResult {
	var result ParseResult
	var export garminJSONExport
	if err := json.Unmarshal(data, &export); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to parse json: %v", err))
		return result
	}

	var shots []ParsedShot
	for i, s := range export.Shots {
		if s.ClubType == "" || s.CarryDistance <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("shot %d: missing club or carry", i+1))
			continue
		}
		total := s.TotalDistance
		if total == 0 {
			total = s.CarryDistance
		}
		shots = append(shots, ParsedShot{
			ClubName: normalizeClubName(s.ClubType),
			Distance: int(math.Round(total)),
			Shape:    InferShotShape(s.LaunchDirection, s.CarryDistance, total),
			Lie:      defaultLieForClub(s.ClubType),
		})
	}

	result.Rounds = groupIntoRound(shots, "Garmin R10 Session")
	return result
}

func parseFloatCell(header map[string]int, row []string, names ...string) float64 {
	v, ok := cell(header, row, names...)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// InferShotShape classifies ball flight from launch direction (degrees,
// negative left) and the gap between carry and total distance. Severe
// curvature or heavy distance loss reads as a Slice/Hook, mild as Fade/Draw.
func InferShotShape(directionDeg, carry, total float64) models.ShotShape {
	abs := math.Abs(directionDeg)
	if abs <= straightDirectionDeg {
		return models.ShapeStraight
	}

	lossPercent := 0.0
	if total > 0 && carry > 0 && carry > total {
		lossPercent = (carry - total) / carry * 100
	}

	severe := abs > severeDirectionDeg ||
		lossPercent > severeLossPercent ||
		(abs > mildDirectionDeg && lossPercent > mildLossPercent)

	if directionDeg < 0 {
		if severe {
			return models.ShapeHook
		}
		return models.ShapeDraw
	}
	if severe {
		return models.ShapeSlice
	}
	return models.ShapeFade
}

// normalizeClubName maps device club labels onto bag club names so parsed
// shots match existing clubs (e.g. "7i" -> "7 Iron").
func normalizeClubName(raw string) string {
	name := strings.TrimSpace(raw)
	lower := strings.ToLower(name)

	switch {
	case lower == "d" || lower == "dr" || strings.Contains(lower, "driver"):
		return "Driver"
	case lower == "pw" || strings.Contains(lower, "pitching"):
		return "Pitching Wedge"
	}

	if n, ok := shortIron(lower); ok {
		return n
	}
	if n, ok := shortWood(lower); ok {
		return n
	}
	if n, ok := degreeWedge(lower); ok {
		return n
	}
	return name
}

func shortIron(lower string) (string, bool) {
	for _, num := range []string{"4", "5", "6", "7", "8", "9"} {
		if lower == num+"i" || lower == num+" iron" || lower == "iron "+num || lower == num+"-iron" {
			return num + " Iron", true
		}
	}
	return "", false
}

func shortWood(lower string) (string, bool) {
	for _, num := range []string{"3", "5"} {
		if lower == num+"w" || lower == num+" wood" || lower == "wood "+num || lower == num+"-wood" {
			return num + " Wood", true
		}
	}
	return "", false
}

func degreeWedge(lower string) (string, bool) {
	for _, deg := range []string{"52", "56", "60"} {
		if lower == deg || lower == deg+"deg" || lower == deg+" degree" || lower == deg+"°" {
			return deg + " Degree", true
		}
	}
	return "", false
}

// defaultLieForClub assigns the lie launch monitors cannot report. Drivers
// hit off a tee, everything else off a mat approximating fairway.
func defaultLieForClub(club string) models.Lie {
	if strings.Contains(strings.ToLower(club), "driver") {
		return models.LieTeeBox
	}
	return models.LieFairway
}

func groupIntoRound(shots []ParsedShot, courseName string) []ParsedRound {
	if len(shots) == 0 {
		return nil
	}
	return []ParsedRound{{
		Date:       time.Now().UTC(),
		CourseName: courseName,
		Shots:      shots,
	}}
}

// ImportService runs the launch monitor import lifecycle: an upload is
// parsed into a preview, then confirmed into persisted rounds and shots.
type ImportService struct {
	db     *gorm.DB
	parser *LaunchMonitorParser
	shots  *ShotHistoryService
	logger *logrus.Logger
}

func NewImportService(db *gorm.DB, parser *LaunchMonitorParser, shots *ShotHistoryService, logger *logrus.Logger) *ImportService {
	return &ImportService{
		db:     db,
		parser: parser,
		shots:  shots,
		logger: logger,
	}
}

// CreateImport parses an uploaded file and stores the import record in
// preview state. Parse failures are recorded on the row, not returned as
// errors, so clients can inspect what went wrong.
func (s *ImportService) CreateImport(ctx context.Context, userID uint, fileName string, data []byte) (*models.LaunchMonitorImport, error) {
	imp := &models.LaunchMonitorImport{
		UserID:   userID,
		FileName: fileName,
		FileSize: int64(len(data)),
		RawData:  string(data),
		Status:   models.ImportParsing,
	}
	if err := s.db.WithContext(ctx).Create(imp).Error; err != nil {
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}

	result := s.parser.Parse(fileName, data)

	imp.DeviceType = result.SourceDevice
	imp.Errors = pq.StringArray(result.Errors)
	imp.Warnings = pq.StringArray(result.Warnings)

	if result.TotalShots() == 0 {
		imp.Status = models.ImportFailed
	} else {
		parsed, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode parsed data: %w", err)
		}
		imp.ParsedData = datatypes.JSON(parsed)
		imp.Status = models.ImportPreview
	}

	if err := s.db.WithContext(ctx).Save(imp).Error; err != nil {
		return nil, fmt.Errorf("failed to update import record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"import_id":   imp.ID,
		"device_type": imp.DeviceType,
		"status":      imp.Status,
		"shots":       result.TotalShots(),
	}).Info("Launch monitor file parsed")

	return imp, nil
}

// GetImport fetches an import record owned by the user.
func (s *ImportService) GetImport(ctx context.Context, userID uint, importID string) (*models.LaunchMonitorImport, error) {
	var imp models.LaunchMonitorImport
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", importID, userID).
		First(&imp).Error
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// ListImports returns the user's import history, newest first.
func (s *ImportService) ListImports(ctx context.Context, userID uint) ([]models.LaunchMonitorImport, error) {
	var imports []models.LaunchMonitorImport
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&imports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return imports, nil
}

// ConfirmImport materializes a previewed import into rounds and shots. Shots
// whose club is not in the user's bag are skipped with a warning; if any are
// skipped the import lands in partial status.
func (s *ImportService) ConfirmImport(ctx context.Context, userID uint, importID string) (*models.LaunchMonitorImport, error) {
	imp, err := s.GetImport(ctx, userID, importID)
	if err != nil {
		return nil, err
	}
	if imp.Status != models.ImportPreview {
		return nil, fmt.Errorf("import is %s, only preview imports can be confirmed", imp.Status)
	}

	var result ParseResult
	if err := json.Unmarshal(imp.ParsedData, &result); err != nil {
		return nil, fmt.Errorf("failed to decode parsed data: %w", err)
	}

	var clubs []models.Club
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clubs).Error; err != nil {
		return nil, fmt.Errorf("failed to load clubs: %w", err)
	}
	clubByName := make(map[string]uint, len(clubs))
	for _, c := range clubs {
		clubByName[strings.ToLower(c.Name)] = c.ID
	}

	var roundsCreated, shotsCreated, skipped int
	var warnings []string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, pr := range result.Rounds {
			round := models.GolfRound{
				UserID:     userID,
				Date:       pr.Date,
				CourseName: pr.CourseName,
			}
			for _, ps := range pr.Shots {
				clubID, ok := clubByName[strings.ToLower(ps.ClubName)]
				if !ok {
					skipped++
					warnings = append(warnings, fmt.Sprintf("no club named %q in bag, shot skipped", ps.ClubName))
					continue
				}
				round.Shots = append(round.Shots, models.Shot{
					ClubID:    clubID,
					Distance:  ps.Distance,
					ShotShape: ps.Shape,
					Lie:       ps.Lie,
				})
			}
			if len(round.Shots) == 0 {
				continue
			}
			if err := tx.Create(&round).Error; err != nil {
				return fmt.Errorf("failed to create round: %w", err)
			}
			roundsCreated++
			shotsCreated += len(round.Shots)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	imp.RoundsCreated = roundsCreated
	imp.ShotsCreated = shotsCreated
	imp.ImportedAt = &now
	imp.Warnings = append(imp.Warnings, warnings...)
	if shotsCreated == 0 {
		imp.Status = models.ImportFailed
	} else if skipped > 0 {
		imp.Status = models.ImportPartial
	} else {
		imp.Status = models.ImportImported
	}

	if err := s.db.WithContext(ctx).Save(imp).Error; err != nil {
		return nil, fmt.Errorf("failed to update import record: %w", err)
	}

	s.shots.InvalidateStats(ctx, userID)

	s.logger.WithFields(logrus.Fields{
		"import_id": imp.ID,
		"rounds":    roundsCreated,
		"shots":     shotsCreated,
		"skipped":   skipped,
	}).Info("Launch monitor import confirmed")

	return imp, nil
}
