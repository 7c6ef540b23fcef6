package validation

import (
	"regexp"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// TimeDeltaPattern matches slicer step and lookback durations such as "1d",
// "2w" or "1y2m".
var TimeDeltaPattern = regexp.MustCompile(`^(([\.\d]+?)y)?(([\.\d]+?)m)?(([\.\d]+?)w)?(([\.\d]+?)d)?$`)

const (
	whenDatetime     = `value.type == "DatetimeStreamSlicer"`
	whenList         = `value.type == "ListStreamSlicer"`
	whenSubstream    = `value.type == "SubstreamSlicer"`
	whenCartesian    = `value.type == "CartesianProductStreamSlicer"`
	whenCursorSlicer = `value.type != "SubstreamSlicer" && value.type != "CartesianProductStreamSlicer"`

	whenHeaderAuth  = `value.type == "ApiKeyAuthenticator" || value.type == "SessionTokenAuthenticator"`
	whenOAuth       = `value.type == "OAuthAuthenticator"`
	whenSessionAuth = `value.type == "SessionTokenAuthenticator"`

	whenSizedStrategy  = `value.type in ["OffsetIncrement", "PageIncrement"]`
	whenCursorStrategy = `value.type == "CursorPagination"`
	whenPageIncrement  = `value.type == "PageIncrement"`

	whenNotPath = `value.inject_into != "path"`
)

func nonPathInjectInto() []string {
	out := make([]string, 0, len(manifest.InjectIntoValues))
	for _, value := range manifest.InjectIntoValues {
		if value != manifest.InjectIntoPath {
			out = append(out, value)
		}
	}
	return out
}

// nonPathRequestOption is an optional request option that cannot inject into
// the path and therefore always needs a field name.
func nonPathRequestOption() check {
	return object(shape{
		{field: "inject_into", then: oneOf(nonPathInjectInto()...)},
		{field: "field_name", then: requiredString()},
	}, true)
}

func datetimeBound() check {
	return either(
		requiredString(),
		object(shape{{field: "datetime", then: requiredString()}}, false),
	)
}

func regularSlicerShape() shape {
	return shape{
		{field: "cursor_field", when: whenCursorSlicer, then: requiredString()},
		{field: "slice_values", when: whenList, then: either(arrayOf(optionalString()), optionalString())},
		{field: "request_option", then: nonPathRequestOption()},
		{field: "start_datetime", when: whenDatetime, then: datetimeBound()},
		{field: "end_datetime", when: whenDatetime, then: datetimeBound()},
		{field: "step", when: whenDatetime, then: stringField(true, TimeDeltaPattern)},
		{field: "datetime_format", when: whenDatetime, then: requiredString()},
		{field: "start_time_option", when: whenDatetime, then: nonPathRequestOption()},
		{field: "end_time_option", when: whenDatetime, then: nonPathRequestOption()},
		{field: "stream_state_field_start", when: whenDatetime, then: optionalString()},
		{field: "stream_state_field_end", when: whenDatetime, then: optionalString()},
		{field: "lookback_window", when: whenDatetime, then: optionalString()},
		{field: "parent_key", when: whenSubstream, then: requiredString()},
		{field: "parentStreamReference", when: whenSubstream, then: requiredString()},
		{field: "stream_slice_field", when: whenSubstream, then: requiredString()},
	}
}

func streamSlicerShape() shape {
	fields := regularSlicerShape()
	return append(fields, rule{
		field: "stream_slicers",
		when:  whenCartesian,
		then:  arrayOf(object(regularSlicerShape(), false)),
	})
}

func authenticatorShape() shape {
	return shape{
		{field: "header", when: whenHeaderAuth, then: requiredString()},
		{field: "token_refresh_endpoint", when: whenOAuth, then: requiredString()},
		{field: "session_token_response_key", when: whenSessionAuth, then: requiredString()},
		{field: "login_url", when: whenSessionAuth, then: requiredString()},
		{field: "validate_session_url", when: whenSessionAuth, then: requiredString()},
	}
}

func paginatorShape() shape {
	return shape{
		{field: "pageSizeOption", then: nonPathRequestOption()},
		{field: "pageTokenOption", then: object(shape{
			{field: "inject_into", then: oneOf(manifest.InjectIntoValues...)},
			{field: "field_name", when: whenNotPath, then: requiredString()},
		}, false)},
		{field: "strategy", then: object(shape{
			{field: "page_size", when: whenSizedStrategy, then: numberField(true), otherwise: numberField(false)},
			{field: "cursor_value", when: whenCursorStrategy, then: requiredString()},
			{field: "stop_condition", when: whenCursorStrategy, then: optionalString()},
			{field: "start_from_page", when: whenPageIncrement, then: optionalString()},
		}, true)},
	}
}

func pairList() check {
	return arrayOf(arrayOf(optionalString()))
}

func streamShape() shape {
	return shape{
		{field: "name", then: requiredString()},
		{field: "urlPath", then: requiredString()},
		{field: "fieldPointer", then: arrayOf(optionalString())},
		{field: "primaryKey", then: arrayOf(optionalString())},
		{field: "httpMethod", then: oneOf("GET", "POST")},
		{field: "requestOptions", then: object(shape{
			{field: "requestParameters", then: pairList()},
			{field: "requestHeaders", then: pairList()},
			{field: "requestBody", then: pairList()},
		}, false)},
		{field: "schema", then: jsonText(CodeInvalidSchema)},
		{field: "paginator", then: object(paginatorShape(), true)},
		{field: "streamSlicer", then: object(streamSlicerShape(), true)},
	}
}

func formShape() shape {
	return shape{
		{field: "global", then: object(shape{
			{field: "connectorName", then: requiredString()},
			{field: "urlBase", then: requiredString()},
			{field: "authenticator", then: object(authenticatorShape(), false)},
		}, false)},
		{field: "streams", then: arrayOf(object(streamShape(), false))},
	}
}
