package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/aldervale/census/internal/domain/occupancy"
	"github.com/aldervale/census/internal/domain/resident"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, services Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "admit_resident",
		Description: "Admit a resident to a bed, opening a new assignment",
	}, admitHandler(services.Occupancy))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "transfer_resident",
		Description: "Move a resident to a different bed; closes the current assignment and opens a new one atomically",
	}, transferHandler(services.Occupancy))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "discharge_resident",
		Description: "Discharge a resident, closing their open assignment",
	}, dischargeHandler(services.Occupancy))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_open_assignments",
		Description: "List currently open bed assignments, optionally filtered by room, bed, or resident",
	}, listAssignmentsHandler(services.Occupancy))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "register_resident",
		Description: "Register a new resident record (does not assign a bed)",
	}, registerResidentHandler(services.Residents))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_residents",
		Description: "List residents of the center with their admission status",
	}, listResidentsHandler(services.Residents))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "occupancy_report",
		Description: "Center-wide occupancy report with per-room occupied, vacant, and out-of-service counts",
	}, occupancyReportHandler(services.Reports))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_vacant_beds",
		Description: "List beds that are currently assignable: in service, unoccupied, in a room with free capacity",
	}, vacantBedsHandler(services.Reports))
}

// assignmentPayload is the wire form of an assignment in tool results.
type assignmentPayload struct {
	ID         string `json:"id" jsonschema:"assignment identifier"`
	ResidentID string `json:"resident_id" jsonschema:"resident identifier"`
	BedID      string `json:"bed_id" jsonschema:"bed identifier"`
	StartAt    string `json:"start_at" jsonschema:"assignment start, RFC 3339"`
	EndAt      string `json:"end_at,omitempty" jsonschema:"assignment end, RFC 3339; empty while open"`
}

func toAssignmentPayload(a *occupancy.Assignment) assignmentPayload {
	p := assignmentPayload{
		ID:         a.ID,
		ResidentID: a.ResidentID,
		BedID:      a.BedID,
		StartAt:    a.StartAt.Format(time.RFC3339),
	}
	if a.EndAt != nil {
		p.EndAt = a.EndAt.Format(time.RFC3339)
	}
	return p
}

// parseAt parses an optional RFC 3339 timestamp argument. Empty means now.
func parseAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339", value)
	}
	return t.UTC(), nil
}

type admitInput struct {
	ResidentID string `json:"resident_id" jsonschema:"resident identifier"`
	BedID      string `json:"bed_id" jsonschema:"destination bed identifier"`
	At         string `json:"at,omitempty" jsonschema:"admission time, RFC 3339 (defaults to now)"`
}

func admitHandler(svc OccupancyService) sdkmcp.ToolHandlerFor[admitInput, assignmentPayload] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input admitInput) (*sdkmcp.CallToolResult, assignmentPayload, error) {
		at, err := parseAt(input.At)
		if err != nil {
			return nil, assignmentPayload{}, err
		}

		a, err := svc.Admit(ctx, getCenterID(ctx), occupancy.AdmitRequest{
			ResidentID: input.ResidentID,
			BedID:      input.BedID,
			At:         at,
		})
		if err != nil {
			return nil, assignmentPayload{}, fmt.Errorf("admission failed: %w", err)
		}
		return nil, toAssignmentPayload(a), nil
	}
}

type transferInput struct {
	ResidentID string `json:"resident_id" jsonschema:"resident identifier"`
	NewBedID   string `json:"new_bed_id" jsonschema:"destination bed identifier"`
	At         string `json:"at,omitempty" jsonschema:"transfer time, RFC 3339 (defaults to now)"`
}

type transferResult struct {
	Closed assignmentPayload `json:"closed" jsonschema:"the assignment closed by the transfer"`
	Opened assignmentPayload `json:"opened" jsonschema:"the new assignment on the destination bed"`
}

func transferHandler(svc OccupancyService) sdkmcp.ToolHandlerFor[transferInput, transferResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input transferInput) (*sdkmcp.CallToolResult, transferResult, error) {
		at, err := parseAt(input.At)
		if err != nil {
			return nil, transferResult{}, err
		}

		result, err := svc.Transfer(ctx, getCenterID(ctx), occupancy.TransferRequest{
			ResidentID: input.ResidentID,
			NewBedID:   input.NewBedID,
			At:         at,
		})
		if err != nil {
			return nil, transferResult{}, fmt.Errorf("transfer failed: %w", err)
		}
		return nil, transferResult{
			Closed: toAssignmentPayload(result.Closed),
			Opened: toAssignmentPayload(result.Opened),
		}, nil
	}
}

type dischargeInput struct {
	ResidentID string `json:"resident_id" jsonschema:"resident identifier"`
	At         string `json:"at,omitempty" jsonschema:"discharge time, RFC 3339 (defaults to now)"`
}

func dischargeHandler(svc OccupancyService) sdkmcp.ToolHandlerFor[dischargeInput, assignmentPayload] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input dischargeInput) (*sdkmcp.CallToolResult, assignmentPayload, error) {
		at, err := parseAt(input.At)
		if err != nil {
			return nil, assignmentPayload{}, err
		}

		closed, err := svc.Discharge(ctx, getCenterID(ctx), occupancy.DischargeRequest{
			ResidentID: input.ResidentID,
			At:         at,
		})
		if err != nil {
			return nil, assignmentPayload{}, fmt.Errorf("discharge failed: %w", err)
		}
		return nil, toAssignmentPayload(closed), nil
	}
}

type listAssignmentsInput struct {
	RoomID     string `json:"room_id,omitempty" jsonschema:"filter by room identifier"`
	BedID      string `json:"bed_id,omitempty" jsonschema:"filter by bed identifier"`
	ResidentID string `json:"resident_id,omitempty" jsonschema:"filter by resident identifier"`
}

type listAssignmentsResult struct {
	Assignments []assignmentPayload `json:"assignments" jsonschema:"open assignments, ordered by start time"`
}

func listAssignmentsHandler(svc OccupancyService) sdkmcp.ToolHandlerFor[listAssignmentsInput, listAssignmentsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input listAssignmentsInput) (*sdkmcp.CallToolResult, listAssignmentsResult, error) {
		assignments, err := svc.OpenAssignments(ctx, getCenterID(ctx), occupancy.Filter{
			RoomID:     input.RoomID,
			BedID:      input.BedID,
			ResidentID: input.ResidentID,
		})
		if err != nil {
			return nil, listAssignmentsResult{}, fmt.Errorf("listing assignments failed: %w", err)
		}

		result := listAssignmentsResult{Assignments: make([]assignmentPayload, 0, len(assignments))}
		for i := range assignments {
			result.Assignments = append(result.Assignments, toAssignmentPayload(&assignments[i]))
		}
		return nil, result, nil
	}
}

type registerResidentInput struct {
	FirstName        string `json:"first_name" jsonschema:"resident first name"`
	LastName         string `json:"last_name" jsonschema:"resident last name"`
	BirthDate        string `json:"birth_date,omitempty" jsonschema:"birth date, RFC 3339"`
	Gender           string `json:"gender,omitempty" jsonschema:"resident gender"`
	ContactName      string `json:"contact_name,omitempty" jsonschema:"emergency contact name"`
	ContactPhone     string `json:"contact_phone,omitempty" jsonschema:"emergency contact phone"`
	ContactRelation  string `json:"contact_relationship,omitempty" jsonschema:"emergency contact relationship"`
	MedicalNotes     string `json:"medical_notes,omitempty" jsonschema:"free-form medical notes"`
}

type residentPayload struct {
	ID        string `json:"id" jsonschema:"resident identifier"`
	FirstName string `json:"first_name" jsonschema:"resident first name"`
	LastName  string `json:"last_name" jsonschema:"resident last name"`
	Status    string `json:"status" jsonschema:"admission status (ADMITTED or DISCHARGED)"`
}

func toResidentPayload(r *resident.Resident) residentPayload {
	return residentPayload{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Status:    string(r.Status),
	}
}

func registerResidentHandler(svc ResidentService) sdkmcp.ToolHandlerFor[registerResidentInput, residentPayload] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input registerResidentInput) (*sdkmcp.CallToolResult, residentPayload, error) {
		var birthDate *time.Time
		if input.BirthDate != "" {
			bd, err := parseAt(input.BirthDate)
			if err != nil {
				return nil, residentPayload{}, err
			}
			birthDate = &bd
		}

		res, err := svc.Register(ctx, getCenterID(ctx), resident.RegisterRequest{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			BirthDate: birthDate,
			Gender:    input.Gender,
			EmergencyContact: resident.EmergencyContact{
				Name:         input.ContactName,
				Phone:        input.ContactPhone,
				Relationship: input.ContactRelation,
			},
			MedicalNotes: input.MedicalNotes,
		})
		if err != nil {
			return nil, residentPayload{}, fmt.Errorf("registration failed: %w", err)
		}
		return nil, toResidentPayload(res), nil
	}
}

type listResidentsInput struct{}

type listResidentsResult struct {
	Residents []residentPayload `json:"residents" jsonschema:"residents ordered by last name"`
}

func listResidentsHandler(svc ResidentService) sdkmcp.ToolHandlerFor[listResidentsInput, listResidentsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listResidentsInput) (*sdkmcp.CallToolResult, listResidentsResult, error) {
		residents, err := svc.List(ctx, getCenterID(ctx))
		if err != nil {
			return nil, listResidentsResult{}, fmt.Errorf("listing residents failed: %w", err)
		}

		result := listResidentsResult{Residents: make([]residentPayload, 0, len(residents))}
		for i := range residents {
			result.Residents = append(result.Residents, toResidentPayload(&residents[i]))
		}
		return nil, result, nil
	}
}

type occupancyReportInput struct{}

type roomOccupancyPayload struct {
	RoomNumber    string  `json:"room_number" jsonschema:"room number"`
	Floor         int     `json:"floor" jsonschema:"floor number"`
	Capacity      int     `json:"capacity" jsonschema:"room capacity"`
	Occupied      int     `json:"occupied" jsonschema:"occupied beds"`
	Vacant        int     `json:"vacant" jsonschema:"assignable beds"`
	OutOfService  int     `json:"out_of_service" jsonschema:"beds out of service"`
	OccupancyRate float64 `json:"occupancy_rate" jsonschema:"occupied over capacity, percent"`
}

type occupancyReportResult struct {
	GeneratedAt   string                 `json:"generated_at" jsonschema:"report timestamp, RFC 3339"`
	Rooms         []roomOccupancyPayload `json:"rooms" jsonschema:"per-room occupancy"`
	TotalBeds     int                    `json:"total_beds" jsonschema:"total beds in the center"`
	Occupied      int                    `json:"occupied" jsonschema:"total occupied beds"`
	Vacant        int                    `json:"vacant" jsonschema:"total assignable beds"`
	OutOfService  int                    `json:"out_of_service" jsonschema:"total beds out of service"`
	OccupancyRate float64                `json:"occupancy_rate" jsonschema:"center occupancy rate, percent"`
}

func occupancyReportHandler(svc ReportService) sdkmcp.ToolHandlerFor[occupancyReportInput, occupancyReportResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ occupancyReportInput) (*sdkmcp.CallToolResult, occupancyReportResult, error) {
		rep, err := svc.Occupancy(ctx, getCenterID(ctx))
		if err != nil {
			return nil, occupancyReportResult{}, fmt.Errorf("occupancy report failed: %w", err)
		}

		result := occupancyReportResult{
			GeneratedAt:   rep.GeneratedAt.Format(time.RFC3339),
			Rooms:         make([]roomOccupancyPayload, 0, len(rep.Rooms)),
			TotalBeds:     rep.TotalBeds,
			Occupied:      rep.Occupied,
			Vacant:        rep.Vacant,
			OutOfService:  rep.OutOfService,
			OccupancyRate: rep.OccupancyRate,
		}
		for _, room := range rep.Rooms {
			result.Rooms = append(result.Rooms, roomOccupancyPayload{
				RoomNumber:    room.RoomNumber,
				Floor:         room.Floor,
				Capacity:      room.Capacity,
				Occupied:      room.Occupied,
				Vacant:        room.Vacant,
				OutOfService:  room.OutOfService,
				OccupancyRate: room.OccupancyRate,
			})
		}
		return nil, result, nil
	}
}

type vacantBedsInput struct{}

type vacantBedPayload struct {
	BedID      string `json:"bed_id" jsonschema:"bed identifier"`
	Label      string `json:"label" jsonschema:"bed label within the room"`
	RoomNumber string `json:"room_number" jsonschema:"room number"`
	Floor      int    `json:"floor" jsonschema:"floor number"`
}

type vacantBedsResult struct {
	Beds []vacantBedPayload `json:"beds" jsonschema:"assignable beds ordered by floor and room"`
}

func vacantBedsHandler(svc ReportService) sdkmcp.ToolHandlerFor[vacantBedsInput, vacantBedsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ vacantBedsInput) (*sdkmcp.CallToolResult, vacantBedsResult, error) {
		beds, err := svc.VacantBeds(ctx, getCenterID(ctx))
		if err != nil {
			return nil, vacantBedsResult{}, fmt.Errorf("listing vacant beds failed: %w", err)
		}

		result := vacantBedsResult{Beds: make([]vacantBedPayload, 0, len(beds))}
		for _, bed := range beds {
			result.Beds = append(result.Beds, vacantBedPayload{
				BedID:      bed.BedID,
				Label:      bed.Label,
				RoomNumber: bed.RoomNumber,
				Floor:      bed.Floor,
			})
		}
		return nil, result, nil
	}
}
