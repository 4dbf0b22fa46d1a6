package view

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/internal/latest"
	"github.com/adobe/reactor-extension-alloy-sub003/registry"
)

const variableDescriptorSuffix = "::dataElements::variable"

// UpdateVariable is the view of the "update variable" action. It edits the
// object held by a variable data element in update mode, so every field can
// also be cleared. Its settings are
//
//	{"dataElementId": ..., "data": {...}, "transforms": {"a.b": {"clear": true}}}
type UpdateVariable struct {
	src SchemaSource
	des DataElementSource
	form

	elementSlot   latest.Slot
	propertyID    string
	dataElementID string
}

var _ Bridge = (*UpdateVariable)(nil)

// NewUpdateVariable returns a view resolving variables through des and
// their schemas through src.
func NewUpdateVariable(src SchemaSource, des DataElementSource, log *zap.Logger, opts ...alloy.BuilderOption) *UpdateVariable {
	return &UpdateVariable{src: src, des: des, form: newForm(log, true, opts...)}
}

// Init restores the selected variable and the persisted data and
// transforms.
func (v *UpdateVariable) Init(ctx context.Context, info InitInfo) error {
	v.reset("")
	v.mu.Lock()
	v.propertyID = info.PropertyID
	id := stringAt(info.Settings, "dataElementId")
	v.dataElementID = id
	v.mu.Unlock()
	if id == "" {
		return nil
	}
	return v.selectDataElement(ctx, id, &persisted{
		value:      info.Settings["data"],
		transforms: TransformsFrom(info.Settings["transforms"]),
	})
}

// DataElements lists the data elements of the property.
func (v *UpdateVariable) DataElements(ctx context.Context, search, page string) (registry.Page[registry.DataElement], error) {
	v.mu.Lock()
	propertyID := v.propertyID
	v.mu.Unlock()
	return v.des.FetchDataElements(ctx, propertyID, search, page)
}

// SelectDataElement switches to another variable and loads its schema. The
// requests of the previous selection are cancelled.
func (v *UpdateVariable) SelectDataElement(ctx context.Context, id string) error {
	return v.selectDataElement(ctx, id, nil)
}

func (v *UpdateVariable) selectDataElement(ctx context.Context, id string, p *persisted) error {
	v.reset("")
	var de registry.DataElementDetail
	err := latest.Do(ctx, &v.elementSlot, func(ctx context.Context) (registry.DataElementDetail, error) {
		return v.des.FetchDataElement(ctx, id)
	}, func(d registry.DataElementDetail) { de = d })
	if alloy.IsAbort(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.HasSuffix(de.DelegateDescriptorID, variableDescriptorSuffix) {
		return &alloy.ReportableError{
			Message:     "The selected data element is not a variable",
			Originating: fmt.Errorf("view: data element %s has type %q", id, de.DelegateDescriptorID),
		}
	}
	ref := schemaRefFrom(de.Settings)
	if ref.ID == "" {
		return &alloy.ReportableError{Message: "The selected variable has no schema"}
	}

	v.reset(stringAt(de.Settings, "sandbox", "name"))
	v.mu.Lock()
	v.dataElementID = id
	v.pending = p
	v.mu.Unlock()
	return v.loadSchema(ctx, v.src, ref)
}

// DataElementID returns the selected variable.
func (v *UpdateVariable) DataElementID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dataElementID
}

// GetSettings returns the settings to persist.
func (v *UpdateVariable) GetSettings() (map[string]any, error) {
	out := v.extract()
	settings := map[string]any{"dataElementId": v.DataElementID()}
	if out.Value != nil {
		settings["data"] = out.Value
	}
	if ts := TransformsSettings(out.Transforms()); ts != nil {
		settings["transforms"] = ts
	}
	return settings, nil
}

// Validate reports whether a variable is selected and its data is valid.
func (v *UpdateVariable) Validate() bool {
	return v.DataElementID() != "" && v.Errors().Empty()
}
