package server

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// methodType stores reflection metadata for one RPC-compatible method.
type methodType struct {
	method    reflect.Method
	ArgType   reflect.Type
	ReplyType reflect.Type
}

// service wraps a user-defined struct (e.g. &Arith{}) and the subset of
// its exported methods matching the RPC signature convention.
type service struct {
	name   string
	rcvr   reflect.Value
	typ    reflect.Type
	method map[string]*methodType
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// newService scans rcvr's exported methods for the signature
//
//	func (receiver) MethodName(args *ArgsType, reply *ReplyType) error
//
// and indexes the matches by name. Methods that don't match are silently
// skipped, exactly as in the teacher's RegisterMethods.
func newService(rcvr any) (*service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("rpcfabric: rcvr must be a pointer, got %s", typ.Kind())
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rpcfabric: rcvr must point to a struct, got %s", typ.Elem().Kind())
	}

	svc := &service{
		name:   typ.Elem().Name(),
		rcvr:   reflect.ValueOf(rcvr),
		typ:    typ,
		method: make(map[string]*methodType),
	}

	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if m.Type.NumIn() != 3 || m.Type.NumOut() != 1 {
			continue
		}
		if m.Type.Out(0) != errorType {
			continue
		}
		if m.Type.In(1).Kind() != reflect.Ptr || m.Type.In(2).Kind() != reflect.Ptr {
			continue
		}
		svc.method[m.Name] = &methodType{
			method:    m,
			ArgType:   m.Type.In(1).Elem(),
			ReplyType: m.Type.In(2).Elem(),
		}
	}
	return svc, nil
}

func (s *service) call(mt *methodType, argv, replyv reflect.Value) error {
	results := mt.method.Func.Call([]reflect.Value{s.rcvr, argv, replyv})
	if !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}

// RegisterService is sugar over Register: it reflects over rcvr, and
// binds "ServiceName.MethodName" to a HandlerFunc that JSON-decodes
// params into the method's argument type, invokes it, and JSON-encodes
// the reply — the same Args/Reply/error convention as the teacher's
// NewService, generalized to register each method under the dispatcher's
// flat name→handler table instead of a nested service map.
func (s *Server) RegisterService(rcvr any) error {
	svc, err := newService(rcvr)
	if err != nil {
		return err
	}
	for name, mt := range svc.method {
		mt := mt
		fullName := svc.name + "." + name
		handler := func(ctx context.Context, params []byte) ([]byte, error) {
			argv := reflect.New(mt.ArgType)
			if len(params) > 0 {
				if err := json.Unmarshal(params, argv.Interface()); err != nil {
					return nil, err
				}
			}
			replyv := reflect.New(mt.ReplyType)
			if err := svc.call(mt, argv, replyv); err != nil {
				return nil, err
			}
			return json.Marshal(replyv.Interface())
		}
		if err := s.Register(fullName, handler); err != nil {
			return err
		}
	}
	return nil
}
