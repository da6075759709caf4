package facts

import "reflect"

// Merge applies u to current and returns the result as a new value; current
// is never modified. Top-level fields set in u replace the current value.
// Group fields (safety, children, existingCases, evidence) are merged one
// level deep: only the sub-fields set in the update are overwritten.
// Sequences are copied, never aliased.
func Merge(current OPFacts, u Update) OPFacts {
	out := current.Clone()
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(u)
	t := src.Type()

	for i := 0; i < t.NumField(); i++ {
		fv := src.Field(i)
		if fv.IsNil() {
			continue
		}
		target := dst.FieldByName(t.Field(i).Name)
		val := fv.Elem()
		switch val.Kind() {
		case reflect.Struct:
			mergeGroup(target, val)
		case reflect.Slice:
			target.Set(cloneSlice(val))
		default:
			target.Set(val)
		}
	}
	return out
}

func mergeGroup(dst, src reflect.Value) {
	t := src.Type()
	for i := 0; i < t.NumField(); i++ {
		fv := src.Field(i)
		if fv.IsNil() {
			continue
		}
		dst.FieldByName(t.Field(i).Name).Set(fv.Elem())
	}
}

func cloneSlice(v reflect.Value) reflect.Value {
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(out, v)
	return out
}

// Diff returns an update that turns before into after. Only fields that
// differ are set; groups carry only their differing sub-fields.
func Diff(before, after OPFacts) Update {
	var u Update
	uv := reflect.ValueOf(&u).Elem()
	bv := reflect.ValueOf(before)
	av := reflect.ValueOf(after)
	t := uv.Type()

	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		b, a := bv.FieldByName(name), av.FieldByName(name)
		elem := t.Field(i).Type.Elem()

		if elem.Kind() == reflect.Struct {
			g := reflect.New(elem)
			for j := 0; j < elem.NumField(); j++ {
				sub := elem.Field(j).Name
				if !reflect.DeepEqual(b.FieldByName(sub).Interface(), a.FieldByName(sub).Interface()) {
					p := reflect.New(elem.Field(j).Type.Elem())
					p.Elem().Set(a.FieldByName(sub))
					g.Elem().Field(j).Set(p)
				}
			}
			if !isZeroUpdate(g.Elem()) {
				uv.Field(i).Set(g)
			}
			continue
		}

		if reflect.DeepEqual(b.Interface(), a.Interface()) {
			continue
		}
		p := reflect.New(elem)
		if a.Kind() == reflect.Slice {
			p.Elem().Set(cloneSlice(a))
		} else {
			p.Elem().Set(a)
		}
		uv.Field(i).Set(p)
	}
	return u
}
